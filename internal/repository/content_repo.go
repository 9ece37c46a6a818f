package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/realtruedate/backend/internal/db"
)

// ContentRepository provides data access for the static-content tables: FAQs,
// about-us, privacy policy, contact messages, feedback and social links.
type ContentRepository struct {
	db *gorm.DB
}

func NewContentRepository(database *gorm.DB) *ContentRepository {
	return &ContentRepository{db: database}
}

func (r *ContentRepository) CreateFAQ(ctx context.Context, faq *db.FAQ) error {
	return r.db.WithContext(ctx).Create(faq).Error
}

// ListFAQs returns FAQs, optionally only active ones.
func (r *ContentRepository) ListFAQs(ctx context.Context, activeOnly bool) ([]db.FAQ, error) {
	query := r.db.WithContext(ctx).Order("id ASC")
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var faqs []db.FAQ
	err := query.Find(&faqs).Error
	return faqs, err
}

func (r *ContentRepository) GetFAQ(ctx context.Context, id uint64) (*db.FAQ, error) {
	var faq db.FAQ
	if err := r.db.WithContext(ctx).First(&faq, id).Error; err != nil {
		return nil, err
	}
	return &faq, nil
}

func (r *ContentRepository) SaveFAQ(ctx context.Context, faq *db.FAQ) error {
	return r.db.WithContext(ctx).Save(faq).Error
}

func (r *ContentRepository) DeleteFAQ(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&db.FAQ{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetAboutUs returns the single about-us document, or nil when unset.
func (r *ContentRepository) GetAboutUs(ctx context.Context) (*db.AboutUs, error) {
	var doc db.AboutUs
	err := r.db.WithContext(ctx).Order("id DESC").First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *ContentRepository) CreateAboutUs(ctx context.Context, doc *db.AboutUs) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *ContentRepository) SaveAboutUs(ctx context.Context, doc *db.AboutUs) error {
	return r.db.WithContext(ctx).Save(doc).Error
}

// GetPrivacyPolicy returns the single privacy-policy document, or nil.
func (r *ContentRepository) GetPrivacyPolicy(ctx context.Context) (*db.PrivacyPolicy, error) {
	var doc db.PrivacyPolicy
	err := r.db.WithContext(ctx).Order("id DESC").First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *ContentRepository) CreatePrivacyPolicy(ctx context.Context, doc *db.PrivacyPolicy) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *ContentRepository) SavePrivacyPolicy(ctx context.Context, doc *db.PrivacyPolicy) error {
	return r.db.WithContext(ctx).Save(doc).Error
}

func (r *ContentRepository) CreateContactMessage(ctx context.Context, msg *db.ContactMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *ContentRepository) ListContactMessages(ctx context.Context, offset, limit int) ([]db.ContactMessage, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&db.ContactMessage{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var msgs []db.ContactMessage
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&msgs).Error
	return msgs, total, err
}

func (r *ContentRepository) GetContactMessage(ctx context.Context, id uint64) (*db.ContactMessage, error) {
	var msg db.ContactMessage
	if err := r.db.WithContext(ctx).First(&msg, id).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *ContentRepository) DeleteContactMessage(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&db.ContactMessage{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ContentRepository) SaveContactMessage(ctx context.Context, msg *db.ContactMessage) error {
	return r.db.WithContext(ctx).Save(msg).Error
}

func (r *ContentRepository) CreateFeedback(ctx context.Context, fb *db.Feedback) error {
	return r.db.WithContext(ctx).Create(fb).Error
}

func (r *ContentRepository) ListFeedback(ctx context.Context, offset, limit int) ([]db.Feedback, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&db.Feedback{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []db.Feedback
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error
	return items, total, err
}

func (r *ContentRepository) GetFeedback(ctx context.Context, id uint64) (*db.Feedback, error) {
	var fb db.Feedback
	if err := r.db.WithContext(ctx).First(&fb, id).Error; err != nil {
		return nil, err
	}
	return &fb, nil
}

func (r *ContentRepository) DeleteFeedback(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&db.Feedback{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ContentRepository) SaveFeedback(ctx context.Context, fb *db.Feedback) error {
	return r.db.WithContext(ctx).Save(fb).Error
}

func (r *ContentRepository) CreateSocialLink(ctx context.Context, link *db.SocialLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *ContentRepository) ListSocialLinks(ctx context.Context, activeOnly bool) ([]db.SocialLink, error) {
	query := r.db.WithContext(ctx).Order("id ASC")
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var links []db.SocialLink
	err := query.Find(&links).Error
	return links, err
}

func (r *ContentRepository) GetSocialLink(ctx context.Context, id uint64) (*db.SocialLink, error) {
	var link db.SocialLink
	if err := r.db.WithContext(ctx).First(&link, id).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *ContentRepository) SaveSocialLink(ctx context.Context, link *db.SocialLink) error {
	return r.db.WithContext(ctx).Save(link).Error
}

func (r *ContentRepository) DeleteSocialLink(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&db.SocialLink{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
