package utils

import (
	"errors"
	"mime/multipart"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/toridoriv/fangirl-toolbox/config"
)

const coverBucket = "fangirl-toolbox"

var s3Client *s3.S3

func InitS3(cfg *config.Config) error {
	s3Config := &aws.Config{
		Credentials: credentials.NewStaticCredentials(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			""),
		Endpoint: aws.String(cfg.S3Endpoint),
		Region:   aws.String(cfg.S3Region),
	}

	sess, err := session.NewSession(s3Config)
	if err != nil {
		return err
	}

	s3Client = s3.New(sess)
	return nil
}

// UploadCover stores a fanfiction cover image and returns the object output.
func UploadCover(file *multipart.FileHeader, ficID string) (*s3.PutObjectOutput, error) {
	if s3Client == nil {
		return nil, errors.New("s3Client is nil")
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	key := "covers/" + ficID + "/" + file.Filename

	res, err := s3Client.PutObject(&s3.PutObjectInput{
		Bucket: aws.String(coverBucket),
		Key:    aws.String(key),
		Body:   src,
		ACL:    aws.String("public-read"),
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}
