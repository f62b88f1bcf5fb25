package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Storage 文档文件存储接口
type Storage interface {
	// Save 写入文件内容，返回相对存储路径
	Save(fileName string, r io.Reader) (string, error)
	// Open 打开已存储的文件
	Open(path string) (io.ReadCloser, error)
	// Remove 删除已存储的文件
	Remove(path string) error
}

// DiskStorage 本地磁盘存储实现
// 文件名加 UUID 前缀避免冲突，路径始终限制在 baseDir 内
type DiskStorage struct {
	baseDir string
}

// NewDiskStorage 创建磁盘存储，确保目录存在
func NewDiskStorage(baseDir string) (*DiskStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建上传目录失败: %w", err)
	}
	return &DiskStorage{baseDir: baseDir}, nil
}

func (s *DiskStorage) Save(fileName string, r io.Reader) (string, error) {
	// 只保留原始文件名的 base 部分，防止路径穿越
	name := uuid.New().String() + "_" + filepath.Base(fileName)
	fullPath := filepath.Join(s.baseDir, name)

	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("创建文件失败: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("写入文件失败: %w", err)
	}

	return name, nil
}

func (s *DiskStorage) Open(path string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.baseDir, filepath.Base(path)))
}

func (s *DiskStorage) Remove(path string) error {
	return os.Remove(filepath.Join(s.baseDir, filepath.Base(path)))
}
