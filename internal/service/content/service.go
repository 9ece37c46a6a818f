package content

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/realtruedate/backend/internal/db"
	apperr "github.com/realtruedate/backend/internal/errors"
	"github.com/realtruedate/backend/internal/repository"
)

// Service implements the static-content surfaces: FAQs, about-us, privacy
// policy, contact messages, feedback and social links.
type Service struct {
	content *repository.ContentRepository
}

func NewService(content *repository.ContentRepository) *Service {
	return &Service{content: content}
}

// --- FAQ ---

type FAQInput struct {
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
}

func (s *Service) CreateFAQ(ctx context.Context, in FAQInput) (*db.FAQ, error) {
	faq := db.FAQ{Question: in.Question, Answer: in.Answer, Active: true}
	if err := s.content.CreateFAQ(ctx, &faq); err != nil {
		return nil, err
	}
	return &faq, nil
}

func (s *Service) ListFAQs(ctx context.Context, includeInactive bool) ([]db.FAQ, error) {
	return s.content.ListFAQs(ctx, !includeInactive)
}

func (s *Service) UpdateFAQ(ctx context.Context, id uint64, in FAQInput) (*db.FAQ, error) {
	faq, err := s.content.GetFAQ(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "FAQ not found")
	}
	faq.Question = in.Question
	faq.Answer = in.Answer
	if err := s.content.SaveFAQ(ctx, faq); err != nil {
		return nil, err
	}
	return faq, nil
}

func (s *Service) ToggleFAQ(ctx context.Context, id uint64) (*db.FAQ, error) {
	faq, err := s.content.GetFAQ(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "FAQ not found")
	}
	faq.Active = !faq.Active
	if err := s.content.SaveFAQ(ctx, faq); err != nil {
		return nil, err
	}
	return faq, nil
}

func (s *Service) DeleteFAQ(ctx context.Context, id uint64) error {
	err := s.content.DeleteFAQ(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("FAQ not found")
	}
	return err
}

// --- single-instance documents ---

func (s *Service) GetAboutUs(ctx context.Context) (*db.AboutUs, error) {
	doc, err := s.content.GetAboutUs(ctx)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperr.NotFound("About us has not been set")
	}
	return doc, nil
}

// CreateAboutUs refuses a second document; the surface is single-instance.
func (s *Service) CreateAboutUs(ctx context.Context, content string) (*db.AboutUs, error) {
	existing, err := s.content.GetAboutUs(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Duplicate("About us already exists, update it instead")
	}
	doc := db.AboutUs{Content: content}
	if err := s.content.CreateAboutUs(ctx, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Service) UpdateAboutUs(ctx context.Context, content string) (*db.AboutUs, error) {
	doc, err := s.GetAboutUs(ctx)
	if err != nil {
		return nil, err
	}
	doc.Content = content
	if err := s.content.SaveAboutUs(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) GetPrivacyPolicy(ctx context.Context) (*db.PrivacyPolicy, error) {
	doc, err := s.content.GetPrivacyPolicy(ctx)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperr.NotFound("Privacy policy has not been set")
	}
	return doc, nil
}

func (s *Service) CreatePrivacyPolicy(ctx context.Context, content string) (*db.PrivacyPolicy, error) {
	existing, err := s.content.GetPrivacyPolicy(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Duplicate("Privacy policy already exists, update it instead")
	}
	doc := db.PrivacyPolicy{Content: content}
	if err := s.content.CreatePrivacyPolicy(ctx, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Service) UpdatePrivacyPolicy(ctx context.Context, content string) (*db.PrivacyPolicy, error) {
	doc, err := s.GetPrivacyPolicy(ctx)
	if err != nil {
		return nil, err
	}
	doc.Content = content
	if err := s.content.SavePrivacyPolicy(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// --- contact & feedback ---

type MessageInput struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Message  string `json:"message" binding:"required"`
}

func (s *Service) SubmitContactMessage(ctx context.Context, in MessageInput) (*db.ContactMessage, error) {
	msg := db.ContactMessage{Username: in.Username, Email: in.Email, Message: in.Message}
	if err := s.content.CreateContactMessage(ctx, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *Service) ListContactMessages(ctx context.Context, offset, limit int) ([]db.ContactMessage, int64, error) {
	return s.content.ListContactMessages(ctx, offset, limit)
}

func (s *Service) GetContactMessage(ctx context.Context, id uint64) (*db.ContactMessage, error) {
	msg, err := s.content.GetContactMessage(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Message not found")
	}
	return msg, nil
}

// ReplyContactMessage stores the reply and flips the replied flag.
func (s *Service) ReplyContactMessage(ctx context.Context, id uint64, reply string) (*db.ContactMessage, error) {
	msg, err := s.GetContactMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	msg.Reply = reply
	msg.Replied = true
	if err := s.content.SaveContactMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *Service) DeleteContactMessage(ctx context.Context, id uint64) error {
	if err := s.content.DeleteContactMessage(ctx, id); err != nil {
		return notFoundOr(err, "Message not found")
	}
	return nil
}

func (s *Service) ToggleContactReplied(ctx context.Context, id uint64) (*db.ContactMessage, error) {
	msg, err := s.GetContactMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	msg.Replied = !msg.Replied
	if err := s.content.SaveContactMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *Service) SubmitFeedback(ctx context.Context, in MessageInput) (*db.Feedback, error) {
	fb := db.Feedback{Username: in.Username, Email: in.Email, Message: in.Message}
	if err := s.content.CreateFeedback(ctx, &fb); err != nil {
		return nil, err
	}
	return &fb, nil
}

func (s *Service) ListFeedback(ctx context.Context, offset, limit int) ([]db.Feedback, int64, error) {
	return s.content.ListFeedback(ctx, offset, limit)
}

func (s *Service) GetFeedback(ctx context.Context, id uint64) (*db.Feedback, error) {
	fb, err := s.content.GetFeedback(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Feedback not found")
	}
	return fb, nil
}

func (s *Service) ReplyFeedback(ctx context.Context, id uint64, reply string) (*db.Feedback, error) {
	fb, err := s.GetFeedback(ctx, id)
	if err != nil {
		return nil, err
	}
	fb.Reply = reply
	fb.Replied = true
	if err := s.content.SaveFeedback(ctx, fb); err != nil {
		return nil, err
	}
	return fb, nil
}

func (s *Service) DeleteFeedback(ctx context.Context, id uint64) error {
	if err := s.content.DeleteFeedback(ctx, id); err != nil {
		return notFoundOr(err, "Feedback not found")
	}
	return nil
}

func (s *Service) ToggleFeedbackReplied(ctx context.Context, id uint64) (*db.Feedback, error) {
	fb, err := s.GetFeedback(ctx, id)
	if err != nil {
		return nil, err
	}
	fb.Replied = !fb.Replied
	if err := s.content.SaveFeedback(ctx, fb); err != nil {
		return nil, err
	}
	return fb, nil
}

// --- social links ---

type SocialLinkInput struct {
	Title string `json:"title" binding:"required"`
	URL   string `json:"url" binding:"required,url"`
}

func (s *Service) CreateSocialLink(ctx context.Context, in SocialLinkInput) (*db.SocialLink, error) {
	link := db.SocialLink{Title: in.Title, URL: in.URL, Active: true}
	if err := s.content.CreateSocialLink(ctx, &link); err != nil {
		if isDuplicateKey(err) {
			return nil, apperr.Duplicate("A social link with this title already exists")
		}
		return nil, err
	}
	return &link, nil
}

func (s *Service) ListSocialLinks(ctx context.Context, includeInactive bool) ([]db.SocialLink, error) {
	return s.content.ListSocialLinks(ctx, !includeInactive)
}

func (s *Service) UpdateSocialLink(ctx context.Context, id uint64, in SocialLinkInput) (*db.SocialLink, error) {
	link, err := s.content.GetSocialLink(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Social link not found")
	}
	link.Title = in.Title
	link.URL = in.URL
	if err := s.content.SaveSocialLink(ctx, link); err != nil {
		if isDuplicateKey(err) {
			return nil, apperr.Duplicate("A social link with this title already exists")
		}
		return nil, err
	}
	return link, nil
}

func (s *Service) ToggleSocialLink(ctx context.Context, id uint64) (*db.SocialLink, error) {
	link, err := s.content.GetSocialLink(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Social link not found")
	}
	link.Active = !link.Active
	if err := s.content.SaveSocialLink(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

func (s *Service) DeleteSocialLink(ctx context.Context, id uint64) error {
	err := s.content.DeleteSocialLink(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("Social link not found")
	}
	return err
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(msg)
	}
	return err
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
