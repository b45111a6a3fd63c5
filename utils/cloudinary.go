package utils

import (
	"fmt"

	"bookingbot/config"

	"github.com/cloudinary/cloudinary-go/v2"
)

// CloudinaryConfigured reports whether all Cloudinary credentials are present.
func CloudinaryConfigured() bool {
	cfg := config.AppConfig
	return cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != ""
}

// Cloudinary initializes a Cloudinary client from the loaded configuration.
func Cloudinary() (*cloudinary.Cloudinary, error) {
	if !CloudinaryConfigured() {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}
	cfg := config.AppConfig
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("utils.Cloudinary: failed to initialize Cloudinary: %w", err)
	}
	return cld, nil
}
