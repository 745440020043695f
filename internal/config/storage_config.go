package config

type StorageConfig interface {
	GetS3Bucket() string
	GetS3Region() string
	GetS3Endpoint() string
	GetS3AccessKey() string
	GetS3SecretKey() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

// GetS3Bucket returns an empty string when object storage is not configured.
func (Storage) GetS3Bucket() string {
	return GetEnv("S3_BUCKET", "")
}

func (Storage) GetS3Region() string {
	return GetEnv("S3_REGION", "us-east-1")
}

// GetS3Endpoint overrides the AWS endpoint, e.g. for MinIO.
func (Storage) GetS3Endpoint() string {
	return GetEnv("S3_ENDPOINT", "")
}

func (Storage) GetS3AccessKey() string {
	return GetEnv("S3_ACCESS_KEY", "")
}

func (Storage) GetS3SecretKey() string {
	return GetEnv("S3_SECRET_KEY", "")
}
