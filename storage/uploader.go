package storage

import (
	"context"
	"io"
)

// UploadResult описывает сохранённый объект: ключ в бакете,
// публичный URL и ETag от S3-совместимого API.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader — хранилище медиафайлов турнира: фото уловов,
// видео отпускания рыбы и логотипы. Ключи формируют сервисы,
// хранилище их не интерпретирует.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	// GetPublicURL возвращает публичный URL объекта по ключу.
	// Сетевых вызовов не делает.
	GetPublicURL(key string) string
}
