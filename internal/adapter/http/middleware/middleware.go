package middleware

import (
	"github.com/nurbek-a/driver-dispatch/pkg/logger"
)

type Middleware struct {
	jwtSecret []byte
	log       logger.Logger
}

func NewMiddleware(jwtSecret string, log logger.Logger) *Middleware {
	return &Middleware{
		jwtSecret: []byte(jwtSecret),
		log:       log,
	}
}
