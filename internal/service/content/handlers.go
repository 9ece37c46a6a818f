package content

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/realtruedate/backend/internal/db"
	"github.com/realtruedate/backend/internal/response"
	"github.com/realtruedate/backend/internal/server"
	"github.com/realtruedate/backend/internal/utils/pagination"
)

const pageSize = 20

// Handler exposes the static-content surfaces over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes() []server.Route {
	admin := []db.Role{db.RoleAdmin}
	return []server.Route{
		{Method: http.MethodGet, Path: "/api/faqs", Handler: h.listFAQs},
		{Method: http.MethodPost, Path: "/api/admin/faqs", Roles: admin, Handler: h.createFAQ},
		{Method: http.MethodPut, Path: "/api/admin/faqs/:id", Roles: admin, Handler: h.updateFAQ},
		{Method: http.MethodPatch, Path: "/api/admin/faqs/:id/toggle", Roles: admin, Handler: h.toggleFAQ},
		{Method: http.MethodDelete, Path: "/api/admin/faqs/:id", Roles: admin, Handler: h.deleteFAQ},

		{Method: http.MethodGet, Path: "/api/about-us", Handler: h.getAboutUs},
		{Method: http.MethodPost, Path: "/api/admin/about-us", Roles: admin, Handler: h.createAboutUs},
		{Method: http.MethodPut, Path: "/api/admin/about-us", Roles: admin, Handler: h.updateAboutUs},

		{Method: http.MethodGet, Path: "/api/privacy-policy", Handler: h.getPrivacyPolicy},
		{Method: http.MethodPost, Path: "/api/admin/privacy-policy", Roles: admin, Handler: h.createPrivacyPolicy},
		{Method: http.MethodPut, Path: "/api/admin/privacy-policy", Roles: admin, Handler: h.updatePrivacyPolicy},

		{Method: http.MethodPost, Path: "/api/contact", Handler: h.submitContact},
		{Method: http.MethodGet, Path: "/api/admin/contact", Roles: admin, Handler: h.listContact},
		{Method: http.MethodGet, Path: "/api/admin/contact/:id", Roles: admin, Handler: h.getContact},
		{Method: http.MethodPost, Path: "/api/admin/contact/:id/reply", Roles: admin, Handler: h.replyContact},
		{Method: http.MethodPatch, Path: "/api/admin/contact/:id/toggle", Roles: admin, Handler: h.toggleContactReplied},
		{Method: http.MethodDelete, Path: "/api/admin/contact/:id", Roles: admin, Handler: h.deleteContact},

		{Method: http.MethodPost, Path: "/api/feedback", Handler: h.submitFeedback},
		{Method: http.MethodGet, Path: "/api/admin/feedback", Roles: admin, Handler: h.listFeedback},
		{Method: http.MethodGet, Path: "/api/admin/feedback/:id", Roles: admin, Handler: h.getFeedback},
		{Method: http.MethodPost, Path: "/api/admin/feedback/:id/reply", Roles: admin, Handler: h.replyFeedback},
		{Method: http.MethodPatch, Path: "/api/admin/feedback/:id/toggle", Roles: admin, Handler: h.toggleFeedbackReplied},
		{Method: http.MethodDelete, Path: "/api/admin/feedback/:id", Roles: admin, Handler: h.deleteFeedback},

		{Method: http.MethodGet, Path: "/api/social-links", Handler: h.listSocialLinks},
		{Method: http.MethodPost, Path: "/api/admin/social-links", Roles: admin, Handler: h.createSocialLink},
		{Method: http.MethodPut, Path: "/api/admin/social-links/:id", Roles: admin, Handler: h.updateSocialLink},
		{Method: http.MethodPatch, Path: "/api/admin/social-links/:id/toggle", Roles: admin, Handler: h.toggleSocialLink},
		{Method: http.MethodDelete, Path: "/api/admin/social-links/:id", Roles: admin, Handler: h.deleteSocialLink},
	}
}

func pathID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, "Invalid id", nil, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// --- FAQ ---

func (h *Handler) listFAQs(c *gin.Context) {
	faqs, err := h.svc.ListFAQs(c.Request.Context(), false)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, faqs, "FAQs retrieved successfully")
}

func (h *Handler) createFAQ(c *gin.Context) {
	var in FAQInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	faq, err := h.svc.CreateFAQ(c.Request.Context(), in)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.Created(c, faq, "FAQ created successfully")
}

func (h *Handler) updateFAQ(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in FAQInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	faq, err := h.svc.UpdateFAQ(c.Request.Context(), id, in)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, faq, "FAQ updated successfully")
}

func (h *Handler) toggleFAQ(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	faq, err := h.svc.ToggleFAQ(c.Request.Context(), id)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, faq, "FAQ updated successfully")
}

func (h *Handler) deleteFAQ(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteFAQ(c.Request.Context(), id); err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, nil, "FAQ deleted successfully")
}

// --- single-instance documents ---

type documentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *Handler) getAboutUs(c *gin.Context) {
	doc, err := h.svc.GetAboutUs(c.Request.Context())
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, doc, "About us retrieved successfully")
}

func (h *Handler) createAboutUs(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	doc, err := h.svc.CreateAboutUs(c.Request.Context(), req.Content)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.Created(c, doc, "About us created successfully")
}

func (h *Handler) updateAboutUs(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	doc, err := h.svc.UpdateAboutUs(c.Request.Context(), req.Content)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, doc, "About us updated successfully")
}

func (h *Handler) getPrivacyPolicy(c *gin.Context) {
	doc, err := h.svc.GetPrivacyPolicy(c.Request.Context())
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, doc, "Privacy policy retrieved successfully")
}

func (h *Handler) createPrivacyPolicy(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	doc, err := h.svc.CreatePrivacyPolicy(c.Request.Context(), req.Content)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.Created(c, doc, "Privacy policy created successfully")
}

func (h *Handler) updatePrivacyPolicy(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	doc, err := h.svc.UpdatePrivacyPolicy(c.Request.Context(), req.Content)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, doc, "Privacy policy updated successfully")
}

// --- contact & feedback ---

func (h *Handler) submitContact(c *gin.Context) {
	var in MessageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	msg, err := h.svc.SubmitContactMessage(c.Request.Context(), in)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.Created(c, msg, "Message submitted successfully")
}

func (h *Handler) listContact(c *gin.Context) {
	params := pagination.ParsePage(c.Query("page"), pageSize)
	msgs, total, err := h.svc.ListContactMessages(c.Request.Context(), params.Offset(), params.PageSize)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, gin.H{
		"messages": msgs,
		"meta":     pagination.BuildMeta(params, total, len(msgs)),
	}, "Messages retrieved successfully")
}

func (h *Handler) getContact(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	msg, err := h.svc.GetContactMessage(c.Request.Context(), id)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, msg, "Message retrieved successfully")
}

type replyRequest struct {
	Reply string `json:"reply" binding:"required"`
}

func (h *Handler) replyContact(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req replyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	msg, err := h.svc.ReplyContactMessage(c.Request.Context(), id, req.Reply)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, msg, "Reply saved successfully")
}

func (h *Handler) deleteContact(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteContactMessage(c.Request.Context(), id); err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, nil, "Message deleted successfully")
}

func (h *Handler) toggleContactReplied(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	msg, err := h.svc.ToggleContactReplied(c.Request.Context(), id)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, msg, "Message updated successfully")
}

func (h *Handler) submitFeedback(c *gin.Context) {
	var in MessageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	fb, err := h.svc.SubmitFeedback(c.Request.Context(), in)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.Created(c, fb, "Feedback submitted successfully")
}

func (h *Handler) listFeedback(c *gin.Context) {
	params := pagination.ParsePage(c.Query("page"), pageSize)
	items, total, err := h.svc.ListFeedback(c.Request.Context(), params.Offset(), params.PageSize)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, gin.H{
		"feedback": items,
		"meta":     pagination.BuildMeta(params, total, len(items)),
	}, "Feedback retrieved successfully")
}

func (h *Handler) getFeedback(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	fb, err := h.svc.GetFeedback(c.Request.Context(), id)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, fb, "Feedback retrieved successfully")
}

func (h *Handler) replyFeedback(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req replyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	fb, err := h.svc.ReplyFeedback(c.Request.Context(), id, req.Reply)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, fb, "Reply saved successfully")
}

func (h *Handler) deleteFeedback(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteFeedback(c.Request.Context(), id); err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, nil, "Feedback deleted successfully")
}

func (h *Handler) toggleFeedbackReplied(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	fb, err := h.svc.ToggleFeedbackReplied(c.Request.Context(), id)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, fb, "Feedback updated successfully")
}

// --- social links ---

func (h *Handler) listSocialLinks(c *gin.Context) {
	links, err := h.svc.ListSocialLinks(c.Request.Context(), false)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, links, "Social links retrieved successfully")
}

func (h *Handler) createSocialLink(c *gin.Context) {
	var in SocialLinkInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	link, err := h.svc.CreateSocialLink(c.Request.Context(), in)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.Created(c, link, "Social link created successfully")
}

func (h *Handler) updateSocialLink(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in SocialLinkInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	link, err := h.svc.UpdateSocialLink(c.Request.Context(), id, in)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, link, "Social link updated successfully")
}

func (h *Handler) toggleSocialLink(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	link, err := h.svc.ToggleSocialLink(c.Request.Context(), id)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, link, "Social link updated successfully")
}

func (h *Handler) deleteSocialLink(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteSocialLink(c.Request.Context(), id); err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, nil, "Social link deleted successfully")
}
