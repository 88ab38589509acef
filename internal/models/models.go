package models

import "time"

const (
	RoleCustomer = "customer"
	RoleVendor   = "vendor"
	RoleAdmin    = "admin"

	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"

	OrderStatusPending  = "pending"
	OrderStatusPaid     = "paid"
	OrderStatusRejected = "rejected"

	ConditionNew  = "nuevo"
	ConditionUsed = "usado"

	PaymentYape = "yape"
	PaymentPlin = "plin"
)

type User struct {
	ID                  uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name                string    `gorm:"not null"                 json:"name"`
	Email               string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash        string    `gorm:"not null"                 json:"-"`
	Role                string    `gorm:"not null;index"           json:"role"`
	Status              string    `gorm:"not null;default:approved" json:"status"`
	PhoneNumber         string    `json:"phone_number"`
	WhatsappNumber      string    `json:"whatsapp_number"`
	BusinessDescription string    `json:"business_description"`
	BusinessAddress     string    `json:"business_address"`
	YapeQr              string    `json:"yape_qr"`
	PlinQr              string    `json:"plin_qr"`
	MustChangePassword  bool      `gorm:"default:false"            json:"must_change_password"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// IsApprovedSeller reports whether the user may list products and receive
// orders. Admins always qualify; vendors only once approved.
func (u *User) IsApprovedSeller() bool {
	return u.Role == RoleAdmin || (u.Role == RoleVendor && u.Status == StatusApproved)
}

type Category struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"not null"                 json:"name"`
	Slug     string `gorm:"uniqueIndex;not null"     json:"slug"`
	Icon     string `json:"icon"`
	Order    int    `gorm:"default:0"                json:"order"`
	IsActive bool   `gorm:"default:true"             json:"is_active"`
}

type Product struct {
	ID                 uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID             uint           `gorm:"index;not null"           json:"user_id"`
	User               *User          `json:"user,omitempty"`
	CategoryID         *uint          `gorm:"index"                    json:"category_id"`
	Category           *Category      `json:"category,omitempty"`
	Name               string         `gorm:"not null"                 json:"name"`
	Description        string         `json:"description"`
	Price              float64        `gorm:"not null"                 json:"price"`
	DiscountPercentage *float64       `json:"discount_percentage"`
	Stock              int            `gorm:"default:0"                json:"stock"`
	Condition          string         `gorm:"not null"                 json:"condition"`
	ImageURL           string         `json:"image_url"`
	IsNew              bool           `gorm:"default:false"            json:"is_new"`
	IsFeatured         bool           `gorm:"default:false"            json:"is_featured"`
	Images             []ProductImage `gorm:"constraint:OnDelete:CASCADE" json:"images"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// DiscountedPrice applies the active discount, if any.
func (p *Product) DiscountedPrice() float64 {
	if p.DiscountPercentage != nil && *p.DiscountPercentage > 0 {
		return p.Price * (1 - *p.DiscountPercentage/100)
	}
	return p.Price
}

type ProductImage struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID uint   `gorm:"index;not null"           json:"product_id"`
	ImagePath string `gorm:"not null"                 json:"image_path"`
	Order     int    `gorm:"default:0"                json:"order"`
}

type Order struct {
	ID              uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID      *uint       `gorm:"index"                    json:"customer_id"`
	Customer        *User       `json:"customer,omitempty"`
	CustomerName    string      `gorm:"not null"                 json:"customer_name"`
	CustomerEmail   string      `gorm:"index;not null"           json:"customer_email"`
	CustomerPhone   string      `json:"customer_phone"`
	CustomerAddress string      `json:"customer_address"`
	VendorID        uint        `gorm:"index;not null"           json:"vendor_id"`
	Vendor          *User       `json:"vendor,omitempty"`
	ProductID       uint        `json:"product_id"`
	TotalPrice      float64     `gorm:"not null"                 json:"total_price"`
	Status          string      `gorm:"not null;default:pending" json:"status"`
	VoucherImage    string      `gorm:"not null"                 json:"voucher_image"`
	PaymentMethod   string      `gorm:"not null"                 json:"payment_method"`
	Items           []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

type OrderItem struct {
	ID         uint     `gorm:"primaryKey;autoIncrement"    json:"id"`
	OrderID    uint     `gorm:"index;not null"              json:"order_id"`
	ProductID  uint     `gorm:"not null"                    json:"product_id"`
	Product    *Product `json:"product,omitempty"`
	Quantity   int      `gorm:"not null;check:quantity>0"   json:"quantity"`
	UnitPrice  float64  `gorm:"not null"                    json:"unit_price"`
	TotalPrice float64  `gorm:"not null"                    json:"total_price"`
}

type MenuItem struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Label      string `gorm:"not null"                 json:"label"`
	Path       string `gorm:"not null"                 json:"path"`
	Slug       string `gorm:"uniqueIndex;not null"     json:"slug"`
	Icon       string `json:"icon"`
	Order      int    `gorm:"default:0"                json:"order"`
	IsActive   bool   `gorm:"default:true"             json:"is_active"`
	Type       string `gorm:"not null"                 json:"type"`
	CategoryID *uint  `json:"category_id"`
}

type FeaturedCategory struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID      uint      `gorm:"index;not null"           json:"category_id"`
	Category        *Category `json:"category,omitempty"`
	Name            string    `gorm:"not null"                 json:"name"`
	Icon            string    `json:"icon"`
	ImageURL        string    `json:"image_url"`
	BackgroundColor string    `json:"background_color"`
	TextColor       string    `json:"text_color"`
	Order           int       `gorm:"default:0"                json:"order"`
	IsActive        bool      `gorm:"default:true"             json:"is_active"`
}

type PromotionalBanner struct {
	ID              uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title           string `gorm:"not null"                 json:"title"`
	Subtitle        string `json:"subtitle"`
	ButtonText      string `json:"button_text"`
	ButtonLink      string `json:"button_link"`
	ImageLeftURL    string `json:"image_left_url"`
	ImageRightURL   string `json:"image_right_url"`
	BackgroundColor string `json:"background_color"`
	Order           int    `gorm:"default:0"                json:"order"`
	IsActive        bool   `gorm:"default:true"             json:"is_active"`
}

type HomeBanner struct {
	ID                 uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title              string `gorm:"not null"                 json:"title"`
	Subtitle           string `json:"subtitle"`
	ButtonText         string `json:"button_text"`
	ButtonLink         string `json:"button_link"`
	BackgroundImageURL string `json:"background_image_url"`
	BackgroundColor    string `json:"background_color"`
	Order              int    `gorm:"default:0"                json:"order"`
	IsActive           bool   `gorm:"default:true"             json:"is_active"`
}

type TopBannerSetting struct {
	ID              uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Text            string `json:"text"`
	BackgroundColor string `json:"background_color"`
	TextColor       string `json:"text_color"`
	IsActive        bool   `gorm:"default:true"             json:"is_active"`
}

type FooterSection struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Position    int    `gorm:"default:0"                json:"position"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	LogoURL     string `json:"logo_url"`
	Description string `json:"description"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	Links       string `gorm:"type:text"                json:"links"`
	IsActive    bool   `gorm:"default:true"             json:"is_active"`
}

type SocialLink struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Platform string `gorm:"uniqueIndex;not null"     json:"platform"`
	URL      string `gorm:"not null"                 json:"url"`
	IsActive bool   `gorm:"default:true"             json:"is_active"`
}

type Setting struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Key         string `gorm:"uniqueIndex;not null"     json:"key"`
	Value       string `gorm:"type:text"                json:"value"`
	Description string `json:"description"`
}

type NewsletterSubscription struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	IsActive     bool      `gorm:"default:true"             json:"is_active"`
	SubscribedAt time.Time `json:"subscribed_at"`
}
