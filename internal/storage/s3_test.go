package storage

import (
	"context"
	"testing"
)

func TestS3PublicURL(t *testing.T) {
	cases := []struct {
		name string
		cfg  S3Config
		want string
	}{
		{
			name: "explicit public url",
			cfg:  S3Config{Bucket: "media", PublicURL: "https://cdn.example.edu/"},
			want: "https://cdn.example.edu",
		},
		{
			name: "path style endpoint",
			cfg:  S3Config{Bucket: "media", Endpoint: "http://localhost:9000", UsePathStyle: true},
			want: "http://localhost:9000/media",
		},
		{
			name: "virtual host endpoint",
			cfg:  S3Config{Bucket: "media", Endpoint: "https://s3.example.com"},
			want: "https://media.s3.example.com",
		},
		{
			name: "aws default",
			cfg:  S3Config{Bucket: "media", Region: "eu-west-1"},
			want: "https://media.s3.eu-west-1.amazonaws.com",
		},
	}

	for _, tc := range cases {
		if got := s3PublicURL(tc.cfg); got != tc.want {
			t.Fatalf("%s: s3PublicURL = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestNewS3(t *testing.T) {
	if _, err := NewS3(context.Background(), S3Config{}); err == nil {
		t.Fatal("expected error when bucket is missing")
	}

	backend, err := NewS3(context.Background(), S3Config{
		Bucket:          "media",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("new s3 backend: %v", err)
	}
	if got := backend.URL("uploads/a.png"); got != "http://localhost:9000/media/uploads/a.png" {
		t.Fatalf("unexpected url %q", got)
	}
	if _, err := backend.Save(context.Background(), "../x", nil, ""); err == nil {
		t.Fatal("expected invalid key error")
	}
}
