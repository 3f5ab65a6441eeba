// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

// Package storage serves media files (profile pictures, documents) from an
// S3-compatible bucket. Clients never talk to the bucket directly, they
// receive short-lived presigned URLs.
package storage

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	apperrors "github.com/campuskit/campuskit/internal/pkg/errors"
	"github.com/campuskit/campuskit/internal/pkg/logger"
)

// presignTTL bounds how long a handed-out media URL stays valid.
const presignTTL = 15 * time.Minute

// Config holds the bucket connection settings.
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string

	// UsePathStyle is required for MinIO and most non-AWS endpoints.
	UsePathStyle bool
}

// MediaStore uploads objects and issues presigned download URLs.
type MediaStore struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	log     *logger.Logger
}

// New builds a MediaStore from static credentials.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*MediaStore, error) {
	if cfg.Bucket == "" {
		return nil, apperrors.Validation("storage bucket is required")
	}
	if log == nil {
		log = logger.Nop()
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "loading storage credentials")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &MediaStore{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		log:     log.Named("storage"),
	}, nil
}

// Upload stores an object under folder/name and returns its key.
func (m *MediaStore) Upload(ctx context.Context, folder, name, contentType string, body io.Reader) (string, error) {
	key, err := objectKey(folder, name)
	if err != nil {
		return "", err
	}

	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		m.log.Error("uploading media object", "key", key, "error", err)
		return "", apperrors.UpstreamDelivery(err)
	}
	return key, nil
}

// PresignedURL returns a time-limited GET URL for folder/name.
func (m *MediaStore) PresignedURL(ctx context.Context, folder, name string) (string, error) {
	key, err := objectKey(folder, name)
	if err != nil {
		return "", err
	}

	req, err := m.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		m.log.Error("presigning media object", "key", key, "error", err)
		return "", apperrors.UpstreamDelivery(err)
	}
	return req.URL, nil
}

// objectKey joins folder and name into a bucket key, rejecting traversal
// attempts and absolute paths.
func objectKey(folder, name string) (string, error) {
	folder = strings.Trim(folder, "/")
	name = strings.Trim(name, "/")
	if folder == "" || name == "" {
		return "", apperrors.Validation("folder and file name are required")
	}

	key := path.Join(folder, name)
	if strings.Contains(key, "..") || path.Clean(key) != key {
		return "", apperrors.Validation("invalid media path")
	}
	return key, nil
}
