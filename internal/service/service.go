// Package service implements the domain operations and the conversational
// tool-dispatch engine on top of the store, session registry, model
// gateway, and authorization policy.
package service

import (
	"github.com/storekeep/storekeep/internal/adapter/llm"
	"github.com/storekeep/storekeep/internal/auth"
	"github.com/storekeep/storekeep/internal/session"
	"github.com/storekeep/storekeep/internal/store"
	"github.com/storekeep/storekeep/policy"
)

// Service wires the store, session registry, model gateway, policy engine,
// and token manager together.
type Service struct {
	store    store.Store
	sessions *session.Registry
	gateway  llm.Gateway
	policy   *policy.Engine
	tokens   *auth.TokenManager

	// narrate routes successful tool results through the model's
	// narration step instead of replying with the templated message.
	narrate bool
}

// Option customizes a Service.
type Option func(*Service)

// WithNarration makes the chat flow ask the model to phrase tool results
// instead of using the templated message directly.
func WithNarration() Option {
	return func(s *Service) { s.narrate = true }
}

// New creates a Service.
func New(st store.Store, sessions *session.Registry, gateway llm.Gateway, policyEngine *policy.Engine, tokens *auth.TokenManager, opts ...Option) *Service {
	s := &Service{
		store:    st,
		sessions: sessions,
		gateway:  gateway,
		policy:   policyEngine,
		tokens:   tokens,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
