package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolsite/internal/db"
	"github.com/schoolsite/internal/locale"
	"github.com/schoolsite/internal/service"
	"github.com/schoolsite/internal/view"
)

type orderingRequest struct {
	IsActive  *bool `json:"is_active"`
	SortOrder *int  `json:"sort_order" binding:"omitempty,gte=0"`
}

func (r orderingRequest) ordering() service.OrderingInput {
	return service.OrderingInput{IsActive: r.IsActive, SortOrder: r.SortOrder}
}

type teamMemberRequest struct {
	FullName   string `json:"full_name" binding:"required,max=160"`
	Position   string `json:"position" binding:"required,max=160"`
	Department string `json:"department" binding:"max=120"`
	Bio        string `json:"bio"`
	Quote      string `json:"quote"`
	PhotoURL   string `json:"photo_url" binding:"max=500"`
	orderingRequest
}

func (r teamMemberRequest) toInput() service.TeamMemberInput {
	return service.TeamMemberInput{
		FullName:      r.FullName,
		Position:      r.Position,
		Department:    r.Department,
		Bio:           r.Bio,
		Quote:         r.Quote,
		PhotoURL:      r.PhotoURL,
		OrderingInput: r.ordering(),
	}
}

type galleryRequest struct {
	Title        string `json:"title" binding:"required,max=200"`
	MediaURL     string `json:"media_url" binding:"required,max=500"`
	MediaType    string `json:"media_type" binding:"omitempty,oneof=image video"`
	ThumbnailURL string `json:"thumbnail_url" binding:"max=500"`
	Category     string `json:"category" binding:"max=80"`
	orderingRequest
}

func (r galleryRequest) toInput() service.GalleryInput {
	return service.GalleryInput{
		Title:         r.Title,
		MediaURL:      r.MediaURL,
		MediaType:     r.MediaType,
		ThumbnailURL:  r.ThumbnailURL,
		Category:      r.Category,
		OrderingInput: r.ordering(),
	}
}

type testimonialRequest struct {
	Name           string `json:"name" binding:"required,max=160"`
	Role           string `json:"role" binding:"required,max=160"`
	Content        string `json:"content" binding:"required"`
	AvatarURL      string `json:"avatar_url" binding:"max=500"`
	Program        string `json:"program" binding:"max=160"`
	GraduationYear *int   `json:"graduation_year" binding:"omitempty,gte=1900,lte=2200"`
	Rating         int    `json:"rating" binding:"omitempty,gte=1,lte=5"`
	orderingRequest
}

func (r testimonialRequest) toInput() service.TestimonialInput {
	return service.TestimonialInput{
		Name:           r.Name,
		Role:           r.Role,
		Content:        r.Content,
		AvatarURL:      r.AvatarURL,
		Program:        r.Program,
		GraduationYear: r.GraduationYear,
		Rating:         r.Rating,
		OrderingInput:  r.ordering(),
	}
}

type statisticRequest struct {
	StatKey     string `json:"stat_key" binding:"required,max=80"`
	Label       string `json:"label" binding:"required,max=160"`
	Value       int    `json:"value"`
	Suffix      string `json:"suffix" binding:"max=20"`
	Icon        string `json:"icon" binding:"max=80"`
	Color       string `json:"color" binding:"max=40"`
	Description string `json:"description"`
	orderingRequest
}

func (r statisticRequest) toInput() service.StatisticInput {
	return service.StatisticInput{
		StatKey:       r.StatKey,
		Label:         r.Label,
		Value:         r.Value,
		Suffix:        r.Suffix,
		Icon:          r.Icon,
		Color:         r.Color,
		Description:   r.Description,
		OrderingInput: r.ordering(),
	}
}

type timelineRequest struct {
	Year        int    `json:"year" binding:"required"`
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"required"`
	Icon        string `json:"icon" binding:"max=80"`
	ImageURL    string `json:"image_url" binding:"max=500"`
	IsMilestone bool   `json:"is_milestone"`
	orderingRequest
}

func (r timelineRequest) toInput() service.TimelineInput {
	return service.TimelineInput{
		Year:          r.Year,
		Title:         r.Title,
		Description:   r.Description,
		Icon:          r.Icon,
		ImageURL:      r.ImageURL,
		IsMilestone:   r.IsMilestone,
		OrderingInput: r.ordering(),
	}
}

type partnerRequest struct {
	Name        string `json:"name" binding:"required,max=160"`
	LogoURL     string `json:"logo_url" binding:"max=500"`
	WebsiteURL  string `json:"website_url" binding:"omitempty,url,max=500"`
	Description string `json:"description"`
	orderingRequest
}

func (r partnerRequest) toInput() service.PartnerInput {
	return service.PartnerInput{
		Name:          r.Name,
		LogoURL:       r.LogoURL,
		WebsiteURL:    r.WebsiteURL,
		Description:   r.Description,
		OrderingInput: r.ordering(),
	}
}

type programRequest struct {
	Title       string `json:"title" binding:"required,max=160"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url" binding:"max=500"`
	Color       string `json:"color" binding:"max=40"`
	orderingRequest
}

func (r programRequest) toInput() service.ProgramInput {
	return service.ProgramInput{
		Title:         r.Title,
		Description:   r.Description,
		ImageURL:      r.ImageURL,
		Color:         r.Color,
		OrderingInput: r.ordering(),
	}
}

type faqRequest struct {
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
	Category string `json:"category" binding:"max=80"`
	orderingRequest
}

func (r faqRequest) toInput() service.FAQInput {
	return service.FAQInput{
		Question:      r.Question,
		Answer:        r.Answer,
		Category:      r.Category,
		OrderingInput: r.ordering(),
	}
}

type contactInfoRequest struct {
	InfoType string   `json:"info_type" binding:"required,max=40"`
	Title    string   `json:"title" binding:"required,max=160"`
	Details  []string `json:"details" binding:"required,min=1"`
	Icon     string   `json:"icon" binding:"max=80"`
	Color    string   `json:"color" binding:"max=40"`
	orderingRequest
}

func (r contactInfoRequest) toInput() service.ContactInfoInput {
	return service.ContactInfoInput{
		InfoType:      r.InfoType,
		Title:         r.Title,
		Details:       r.Details,
		Icon:          r.Icon,
		Color:         r.Color,
		OrderingInput: r.ordering(),
	}
}

type socialLinkRequest struct {
	Platform string `json:"platform" binding:"required,max=40"`
	URL      string `json:"url" binding:"required,url,max=500"`
	Icon     string `json:"icon" binding:"max=80"`
	orderingRequest
}

func (r socialLinkRequest) toInput() service.SocialLinkInput {
	return service.SocialLinkInput{
		Platform:      r.Platform,
		URL:           r.URL,
		Icon:          r.Icon,
		OrderingInput: r.ordering(),
	}
}

type contentRoute struct {
	path     string
	register func(*gin.RouterGroup, string)
	public   gin.HandlerFunc
}

// contentResources 返回所有可排序内容表及其路由路径。
func (a *API) contentResources() []contentRoute {
	team := newResource[db.TeamMember, service.TeamMemberInput, teamMemberRequest](a, a.team)
	gallery := newResource[db.GalleryItem, service.GalleryInput, galleryRequest](a, a.gallery)
	testimonials := newResource[db.Testimonial, service.TestimonialInput, testimonialRequest](a, a.testimonials)
	statistics := newResource[db.Statistic, service.StatisticInput, statisticRequest](a, a.statistics)
	timeline := newResource[db.TimelineEvent, service.TimelineInput, timelineRequest](a, a.timeline)
	partners := newResource[db.Partner, service.PartnerInput, partnerRequest](a, a.partners)
	programs := newResource[db.Program, service.ProgramInput, programRequest](a, a.programs)
	faq := newResource[db.FAQItem, service.FAQInput, faqRequest](a, a.faq)
	contactInfo := newResource[db.ContactInfo, service.ContactInfoInput, contactInfoRequest](a, a.contactInfo)
	socialLinks := newResource[db.SocialLink, service.SocialLinkInput, socialLinkRequest](a, a.socialLinks)

	return []contentRoute{
		{"/team", team.register, team.listActive},
		{"/gallery", gallery.register, a.ListGallery},
		{"/testimonials", testimonials.register, testimonials.listActive},
		{"/statistics", statistics.register, statistics.listActive},
		{"/timeline", timeline.register, timeline.listActive},
		{"/partners", partners.register, partners.listActive},
		{"/programs", programs.register, programs.listActive},
		{"/faq", faq.register, a.ListFAQ},
		{"/contact-info", contactInfo.register, contactInfo.listActive},
		{"/social-links", socialLinks.register, socialLinks.listActive},
	}
}

// RegisterContentAdmin 挂载后台内容表 CRUD。
func (a *API) RegisterContentAdmin(group *gin.RouterGroup) {
	for _, res := range a.contentResources() {
		res.register(group, res.path)
	}
}

// RegisterContentPublic 挂载前台只读列表。
func (a *API) RegisterContentPublic(group *gin.RouterGroup) {
	for _, res := range a.contentResources() {
		group.GET(res.path, res.public)
	}
}

type siteContentRequest struct {
	Content     string `json:"content"`
	ContentType string `json:"content_type" binding:"omitempty,oneof=text markdown json"`
}

// ListSiteContent 返回全部页面文案（后台）。
func (a *API) ListSiteContent(c *gin.Context) {
	items, err := a.content.List()
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetSiteContent 返回单个区块。
func (a *API) GetSiteContent(c *gin.Context) {
	item, err := a.content.Get(c.Param("key"))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

// UpsertSiteContent 创建或覆盖区块内容。
func (a *API) UpsertSiteContent(c *gin.Context) {
	var payload siteContentRequest
	if !a.bindJSON(c, &payload) {
		return
	}
	var updatedBy *uint
	if id, ok := currentUserID(c); ok {
		updatedBy = &id
	}
	item, err := a.content.Upsert(service.SiteContentInput{
		SectionKey:  c.Param("key"),
		Content:     payload.Content,
		ContentType: payload.ContentType,
		UpdatedBy:   updatedBy,
	})
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	a.contentChanged(c.Request.Context())
	a.respondMessage(c, http.StatusOK, locale.MsgSaved, gin.H{"item": item})
}

// DeleteSiteContent 删除区块。
func (a *API) DeleteSiteContent(c *gin.Context) {
	if err := a.content.Delete(c.Param("key")); err != nil {
		a.respondServiceError(c, err)
		return
	}
	a.contentChanged(c.Request.Context())
	a.respondMessage(c, http.StatusOK, locale.MsgDeleted, nil)
}

// SocialIcons 返回平台选项与对应 SVG，前台页脚与后台表单共用。
func (a *API) SocialIcons(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"options": view.SocialIconOptions(),
		"icons":   view.SocialIconSVGMap(),
	})
}
