package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AyoubFaradi/emotion-ai/config"
	"github.com/studio-b12/gowebdav"
)

// WebDAVStorage WebDAV 存储后端
type WebDAVStorage struct {
	client   *gowebdav.Client
	rootPath string
}

// NewWebDAVStorage 创建 WebDAV 存储提供者并验证连接
func NewWebDAVStorage(cfg *config.Config) (*WebDAVStorage, error) {
	if cfg.WebDAVURL == "" {
		return nil, fmt.Errorf("webdav URL is required")
	}

	rootPath := strings.Trim(cfg.WebDAVRootPath, "/")
	if rootPath != "" {
		rootPath = "/" + rootPath
	}

	client := gowebdav.NewClient(cfg.WebDAVURL, cfg.WebDAVUsername, cfg.WebDAVPassword)

	if rootPath != "" {
		if err := client.MkdirAll(rootPath, os.FileMode(0755)); err != nil {
			return nil, fmt.Errorf("failed to create webdav root path: %w", err)
		}
	}
	if _, err := client.ReadDir(rootPath); err != nil {
		return nil, fmt.Errorf("webdav connection test failed: %w", err)
	}

	return &WebDAVStorage{
		client:   client,
		rootPath: rootPath,
	}, nil
}

func (s *WebDAVStorage) fullPath(identifier string) string {
	return s.rootPath + "/" + strings.TrimLeft(identifier, "/")
}

// SaveWithContext 保存文件到 WebDAV
func (s *WebDAVStorage) SaveWithContext(ctx context.Context, identifier string, file io.Reader) error {
	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read file content: %w", err)
	}

	if err := s.client.Write(s.fullPath(identifier), data, os.FileMode(0644)); err != nil {
		return fmt.Errorf("failed to write '%s' to webdav: %w", identifier, err)
	}
	return nil
}

// GetWithContext 从 WebDAV 读取文件
func (s *WebDAVStorage) GetWithContext(ctx context.Context, identifier string) (io.ReadCloser, error) {
	stream, err := s.client.ReadStream(s.fullPath(identifier))
	if err != nil {
		return nil, fmt.Errorf("failed to read '%s' from webdav: %w", identifier, err)
	}
	return stream, nil
}

// DeleteWithContext 从 WebDAV 删除文件
func (s *WebDAVStorage) DeleteWithContext(ctx context.Context, identifier string) error {
	if err := s.client.Remove(s.fullPath(identifier)); err != nil {
		return fmt.Errorf("failed to delete '%s' from webdav: %w", identifier, err)
	}
	return nil
}

// Exists 检查文件是否存在
func (s *WebDAVStorage) Exists(ctx context.Context, identifier string) (bool, error) {
	if _, err := s.client.Stat(s.fullPath(identifier)); err != nil {
		return false, nil
	}
	return true, nil
}

// Location 返回 WebDAV 内的文件路径
func (s *WebDAVStorage) Location(identifier string) string {
	return s.fullPath(identifier)
}

// Health 检查根目录可读
func (s *WebDAVStorage) Health(ctx context.Context) error {
	_, err := s.client.ReadDir(s.rootPath)
	return err
}

// Name 返回存储名称
func (s *WebDAVStorage) Name() string {
	return "webdav"
}
