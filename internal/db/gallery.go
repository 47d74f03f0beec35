package db

// 媒体类型
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// GalleryItem 定义校园相册中的图片或视频
type GalleryItem struct {
	Base
	Ordering
	Title        string `gorm:"size:200;not null" json:"title"`
	MediaURL     string `gorm:"size:500;not null" json:"media_url"`
	MediaType    string `gorm:"size:20;default:image" json:"media_type"`
	ThumbnailURL string `gorm:"size:500" json:"thumbnail_url"`
	Category     string `gorm:"size:80" json:"category"`
}
