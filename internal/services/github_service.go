package services

import (
	"context"
	"strings"
	"time"

	"github.com/erindhoxha/mern-stack-site/internal/cache"
	"github.com/erindhoxha/mern-stack-site/internal/providers/github"
	"github.com/erindhoxha/mern-stack-site/internal/utils"
	"github.com/sirupsen/logrus"
)

const githubCacheTTL = 10 * time.Minute

type GithubService interface {
	Repos(ctx context.Context, username string) ([]github.Repo, error)
}

type githubService struct {
	provider github.Provider
	cache    cache.Cache
	log      *logrus.Logger
}

func NewGithubService(provider github.Provider, c cache.Cache, log *logrus.Logger) GithubService {
	if c == nil {
		c = cache.Nop{}
	}
	return &githubService{provider: provider, cache: c, log: log}
}

// Repos is read-through cached. Every upstream failure is reported as NotFound;
// the cause is logged only.
func (s *githubService) Repos(ctx context.Context, username string) ([]github.Repo, error) {
	const op = "GithubService.Repos"

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, utils.E(utils.CodeNotFound, op, "No Github profile found", nil)
	}
	key := "github:repos:" + strings.ToLower(username)

	var cached []github.Repo
	hit, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("github cache read failed")
	}
	if hit {
		return cached, nil
	}

	repos, err := s.provider.Repos(ctx, username)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"op":       op,
			"username": username,
		}).Warn("github lookup failed")
		return nil, utils.E(utils.CodeNotFound, op, "No Github profile found", err)
	}

	if err := s.cache.SetJSON(ctx, key, repos, githubCacheTTL); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("github cache write failed")
	}
	return repos, nil
}
