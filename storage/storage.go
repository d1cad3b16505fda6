package storage

import (
	"context"
	"io"
)

// Provider 上传图片的存储后端
type Provider interface {
	// SaveWithContext 保存一张拍摄图片
	SaveWithContext(ctx context.Context, identifier string, file io.Reader) error
	// GetWithContext 读取一张已保存的图片
	GetWithContext(ctx context.Context, identifier string) (io.ReadCloser, error)
	// DeleteWithContext 删除一张已保存的图片
	DeleteWithContext(ctx context.Context, identifier string) error
	// Exists 检查图片是否存在
	Exists(ctx context.Context, identifier string) (bool, error)
	// Location 返回写入审计记录 image_path 列的路径表示
	Location(identifier string) string
	// Health 检查存储后端是否可用
	Health(ctx context.Context) error
	// Name 返回存储名称
	Name() string
}
