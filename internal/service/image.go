package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/tastoria/backend/config"
)

// ImageGenerator is the external image-generation function. Failures are
// advisory: callers persist records without an image rather than fail.
type ImageGenerator interface {
	GenerateImageFromPrompt(ctx context.Context, prompt string, size string) (string, error)
}

// ImageGenerationRequest represents a request to the DALL-E API
type ImageGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	Quality        string `json:"quality"`
	ResponseFormat string `json:"response_format"`
}

// ImageGenerationResponse represents the response from the DALL-E API
type ImageGenerationResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL           string `json:"url,omitempty"`
		B64JSON       string `json:"b64_json,omitempty"`
		RevisedPrompt string `json:"revised_prompt,omitempty"`
	} `json:"data"`
}

// ImageService generates recipe photographs and stores them in S3.
type ImageService struct {
	apiKey   string
	apiURL   string
	s3Config *config.S3Config
	client   *http.Client
}

func NewImageService(apiKey, apiURL string, s3Config *config.S3Config) (*ImageService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("image API key must be set")
	}
	if apiURL == "" {
		apiURL = "https://api.openai.com/v1/images/generations"
	}
	return &ImageService{
		apiKey:   apiKey,
		apiURL:   apiURL,
		s3Config: s3Config,
		client:   &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// RecipeImagePrompt derives the photograph prompt for a recipe title.
func RecipeImagePrompt(title string) string {
	return fmt.Sprintf("Professional food photograph, %s, plated beautifully, overhead shot, bright natural lighting, high resolution", title)
}

// GenerateImageFromPrompt generates an image, mirrors it to S3 and returns
// the stored URL. When the S3 upload fails the provider URL is returned as a
// fallback instead of an error.
func (s *ImageService) GenerateImageFromPrompt(ctx context.Context, prompt string, size string) (string, error) {
	reqBody := ImageGenerationRequest{
		Model:          "dall-e-3",
		Prompt:         prompt,
		N:              1,
		Size:           size,
		Quality:        "standard",
		ResponseFormat: "url",
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result ImageGenerationResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Data) == 0 || result.Data[0].URL == "" {
		return "", fmt.Errorf("no image data in API response")
	}
	imageURL := result.Data[0].URL

	s3URL, err := s.downloadAndUploadToS3(ctx, imageURL)
	if err != nil {
		log.Printf("[ImageService] S3 upload failed, returning provider URL: %v", err)
		return imageURL, nil
	}
	return s3URL, nil
}

func (s *ImageService) downloadAndUploadToS3(ctx context.Context, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download image, status: %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read image data: %w", err)
	}

	fileName := fmt.Sprintf("recipe-images/%s.png", uuid.New().String())
	return s.UploadImageToS3(ctx, imageData, fileName)
}

// UploadImageToS3 uploads image data to S3 and returns the public URL.
func (s *ImageService) UploadImageToS3(ctx context.Context, imageData []byte, fileName string) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(imageData),
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName), nil
}
