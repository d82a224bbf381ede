package database

import (
	"errors"
	"io"
	"os"

	storage_go "github.com/supabase-community/storage-go"
)

// SupabaseStorage initializes the storage client and bucket name
func SupabaseStorage() (*storage_go.Client, string, error) {
	projectURL := os.Getenv("SUPABASE_URL")
	serviceKey := os.Getenv("SUPABASE_KEY")
	bucketName := os.Getenv("BUCKET_NAME")

	if projectURL == "" || serviceKey == "" || bucketName == "" {
		return nil, "", errors.New("missing SUPABASE_URL, SUPABASE_KEY, or BUCKET_NAME in environment variables")
	}

	storageClient := storage_go.NewClient(projectURL+"/storage/v1", serviceKey, nil)
	return storageClient, bucketName, nil
}

// UploadMedia stores a media file in the configured bucket and returns its public URL.
func UploadMedia(fileName string, content io.Reader, contentType string) (string, error) {
	client, bucket, err := SupabaseStorage()
	if err != nil {
		return "", err
	}

	if _, err := client.UploadFile(bucket, fileName, content, storage_go.FileOptions{
		ContentType: &contentType,
	}); err != nil {
		return "", err
	}

	resp := client.GetPublicUrl(bucket, fileName)
	return resp.SignedURL, nil
}
