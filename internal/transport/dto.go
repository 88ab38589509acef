package transport

import "github.com/fatmac/marketplace/internal/models"

// Requests carry validate tags consumed by the validation package; tag names
// follow the json field names.

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=255"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=customer vendor admin"`
}

type RegisterVendorRequest struct {
	Name                string `json:"name"                 validate:"required,max=255"`
	Email               string `json:"email"                validate:"required,email,max=255"`
	Password            string `json:"password"             validate:"required,min=8,max=72"`
	PhoneNumber         string `json:"phone_number"         validate:"max=20"`
	WhatsappNumber      string `json:"whatsapp_number"      validate:"max=20"`
	BusinessDescription string `json:"business_description" validate:"max=1000"`
	BusinessAddress     string `json:"business_address"     validate:"max=255"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name                *string `json:"name"                 validate:"omitempty,max=255"`
	PhoneNumber         *string `json:"phone_number"         validate:"omitempty,max=20"`
	WhatsappNumber      *string `json:"whatsapp_number"      validate:"omitempty,max=20"`
	BusinessDescription *string `json:"business_description" validate:"omitempty,max=1000"`
	BusinessAddress     *string `json:"business_address"     validate:"omitempty,max=255"`
}

type ChangePasswordRequest struct {
	CurrentPassword         string `json:"current_password"          validate:"required"`
	NewPassword             string `json:"new_password"              validate:"required,min=8,max=72"`
	NewPasswordConfirmation string `json:"new_password_confirmation" validate:"required,eqfield=NewPassword"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type CreateProductRequest struct {
	Name               string   `json:"name"                validate:"required,max=255"`
	Description        string   `json:"description"         validate:"max=5000"`
	Price              float64  `json:"price"               validate:"required,gte=0"`
	DiscountPercentage *float64 `json:"discount_percentage" validate:"omitempty,gte=0,lte=100"`
	Stock              int      `json:"stock"               validate:"gte=0"`
	Condition          string   `json:"condition"           validate:"required,oneof=nuevo usado"`
	CategoryID         *uint    `json:"category_id"`
	IsNew              bool     `json:"is_new"`
	IsFeatured         bool     `json:"is_featured"`
}

type UpdateProductRequest struct {
	Name               *string  `json:"name"                validate:"omitempty,max=255"`
	Description        *string  `json:"description"         validate:"omitempty,max=5000"`
	Price              *float64 `json:"price"               validate:"omitempty,gte=0"`
	DiscountPercentage *float64 `json:"discount_percentage" validate:"omitempty,gte=0,lte=100"`
	Stock              *int     `json:"stock"               validate:"omitempty,gte=0"`
	Condition          *string  `json:"condition"           validate:"omitempty,oneof=nuevo usado"`
	CategoryID         *uint    `json:"category_id"`
	IsNew              *bool    `json:"is_new"`
	IsFeatured         *bool    `json:"is_featured"`
	DeleteImages       []uint   `json:"delete_images"`
}

// CartLine is one entry of the checkout cart JSON.
type CartLine struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type CheckoutRequest struct {
	Products        string `json:"products"         validate:"required"`
	CustomerName    string `json:"customer_name"    validate:"required,max=255"`
	CustomerEmail   string `json:"customer_email"   validate:"required,email,max=255"`
	CustomerPhone   string `json:"customer_phone"   validate:"required,max=20"`
	CustomerAddress string `json:"customer_address" validate:"required,max=500"`
	PaymentMethod   string `json:"payment_method"   validate:"required,oneof=yape plin"`
}

// UserCredentials is returned exactly once, in the checkout response that
// provisioned the account. The plaintext password exists nowhere else.
type UserCredentials struct {
	Email              string `json:"email"`
	Password           string `json:"password"`
	MustChangePassword bool   `json:"must_change_password"`
}

type CheckoutResponse struct {
	Order           *models.Order    `json:"order"`
	UserCredentials *UserCredentials `json:"user_credentials,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=paid rejected"`
}

type VendorStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

type AdminUpdateVendorRequest struct {
	Name                *string `json:"name"                 validate:"omitempty,max=255"`
	PhoneNumber         *string `json:"phone_number"         validate:"omitempty,max=20"`
	WhatsappNumber      *string `json:"whatsapp_number"      validate:"omitempty,max=20"`
	BusinessDescription *string `json:"business_description" validate:"omitempty,max=1000"`
	BusinessAddress     *string `json:"business_address"     validate:"omitempty,max=255"`
}

type CategoryRequest struct {
	Name     string `json:"name"      validate:"required,max=255"`
	Slug     string `json:"slug"      validate:"required,max=255"`
	Icon     string `json:"icon"      validate:"max=255"`
	Order    int    `json:"order"`
	IsActive *bool  `json:"is_active"`
}

type MenuItemRequest struct {
	Label      string `json:"label"       validate:"required,max=255"`
	Path       string `json:"path"        validate:"required,max=255"`
	Slug       string `json:"slug"        validate:"required,max=255"`
	Icon       string `json:"icon"        validate:"max=255"`
	Order      int    `json:"order"`
	IsActive   *bool  `json:"is_active"`
	Type       string `json:"type"        validate:"required,max=50"`
	CategoryID *uint  `json:"category_id"`
}

type FeaturedCategoryRequest struct {
	CategoryID      uint   `json:"category_id"      validate:"required"`
	Name            string `json:"name"             validate:"required,max=255"`
	Icon            string `json:"icon"             validate:"max=255"`
	ImageURL        string `json:"image_url"        validate:"omitempty,url"`
	BackgroundColor string `json:"background_color" validate:"max=50"`
	TextColor       string `json:"text_color"       validate:"max=50"`
	Order           int    `json:"order"`
	IsActive        *bool  `json:"is_active"`
}

type PromotionalBannerRequest struct {
	Title           string `json:"title"            validate:"required,max=255"`
	Subtitle        string `json:"subtitle"         validate:"max=255"`
	ButtonText      string `json:"button_text"      validate:"max=100"`
	ButtonLink      string `json:"button_link"      validate:"max=255"`
	ImageLeftURL    string `json:"image_left_url"   validate:"omitempty,url"`
	ImageRightURL   string `json:"image_right_url"  validate:"omitempty,url"`
	BackgroundColor string `json:"background_color" validate:"max=50"`
	Order           int    `json:"order"`
	IsActive        *bool  `json:"is_active"`
}

type HomeBannerRequest struct {
	Title              string `json:"title"                validate:"required,max=255"`
	Subtitle           string `json:"subtitle"             validate:"max=255"`
	ButtonText         string `json:"button_text"          validate:"max=100"`
	ButtonLink         string `json:"button_link"          validate:"max=255"`
	BackgroundImageURL string `json:"background_image_url" validate:"omitempty,url"`
	BackgroundColor    string `json:"background_color"     validate:"max=50"`
	Order              int    `json:"order"`
	IsActive           *bool  `json:"is_active"`
}

type TopBannerRequest struct {
	Text            string `json:"text"             validate:"max=500"`
	BackgroundColor string `json:"background_color" validate:"max=50"`
	TextColor       string `json:"text_color"       validate:"max=50"`
	IsActive        *bool  `json:"is_active"`
}

type FooterSectionRequest struct {
	Position    int    `json:"position"    validate:"gte=0"`
	Title       string `json:"title"       validate:"max=255"`
	Content     string `json:"content"     validate:"max=5000"`
	LogoURL     string `json:"logo_url"    validate:"omitempty,url"`
	Description string `json:"description" validate:"max=1000"`
	Phone       string `json:"phone"       validate:"max=20"`
	Email       string `json:"email"       validate:"omitempty,email"`
	Address     string `json:"address"     validate:"max=255"`
	Links       string `json:"links"`
	IsActive    *bool  `json:"is_active"`
}

type SocialLinkRequest struct {
	Platform string `json:"platform"  validate:"required,max=50"`
	URL      string `json:"url"       validate:"required,url"`
	IsActive *bool  `json:"is_active"`
}

type SettingRequest struct {
	Key         string `json:"key"         validate:"required,max=255"`
	Value       string `json:"value"`
	Description string `json:"description" validate:"max=500"`
}

type NewsletterRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// Meta is the pagination envelope attached to list responses.
type Meta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type Page struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

func NewPage(data any, page, size int, total int64) Page {
	pages := int(total) / size
	if int(total)%size != 0 {
		pages++
	}
	return Page{Data: data, Meta: Meta{Page: page, Size: size, Total: total, TotalPages: pages}}
}
