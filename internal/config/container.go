package config

import (
	"pdf-webp-converter/internal/domain"
	"pdf-webp-converter/internal/service"
	"pdf-webp-converter/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config            domain.Config
	Logger            domain.Logger
	Rasterizer        domain.Rasterizer
	PageEstimator     domain.PageEstimator
	SessionService    domain.SessionService
	ConversionService domain.ConversionService
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	config := NewConfig()
	appLogger := logger.NewLogger(config.GetLogLevel())

	rasterizer := service.NewFitzRasterizer(appLogger)
	estimator := service.NewPageEstimator(config.GetPageEstimateFactor(), appLogger)
	sessions := service.NewSessionManager(config, appLogger)
	pipeline := service.NewConversionPipeline(rasterizer, estimator, sessions, config, appLogger)

	return &Container{
		Config:            config,
		Logger:            appLogger,
		Rasterizer:        rasterizer,
		PageEstimator:     estimator,
		SessionService:    sessions,
		ConversionService: pipeline,
	}
}

// GetConfig returns the configuration instance
func (c *Container) GetConfig() domain.Config {
	return c.Config
}

// GetLogger returns the logger instance
func (c *Container) GetLogger() domain.Logger {
	return c.Logger
}

// GetSessionService returns the session manager instance
func (c *Container) GetSessionService() domain.SessionService {
	return c.SessionService
}

// GetConversionService returns the conversion pipeline instance
func (c *Container) GetConversionService() domain.ConversionService {
	return c.ConversionService
}
