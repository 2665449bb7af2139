package stakeholder

import (
	"context"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clarity/internal/common"
	"github.com/ternarybob/clarity/internal/interfaces"
)

// Service produces role-specific views and summaries of a project's PRD
type Service struct {
	llm      interfaces.LLMService
	logger   arbor.ILogger
	profiles map[string]Profile
}

// NewService creates a stakeholder service. profilesPath optionally
// replaces the built-in role profiles; a load failure falls back to the
// defaults with a warning.
func NewService(llmService interfaces.LLMService, profilesPath string, logger arbor.ILogger) *Service {
	profiles := DefaultProfiles()
	if profilesPath != "" {
		loaded, err := LoadProfiles(profilesPath)
		if err != nil {
			logger.Warn().Err(err).Str("path", profilesPath).Msg("Failed to load stakeholder profiles, using built-in set")
		} else {
			profiles = loaded
		}
	}

	return &Service{
		llm:      llmService,
		logger:   logger,
		profiles: profiles,
	}
}

// Profiles lists the available role profiles in stable order
func (s *Service) Profiles() []Profile {
	out := make([]Profile, 0, len(s.profiles))
	for _, role := range sortedRoles(s.profiles) {
		out = append(out, s.profiles[role])
	}
	return out
}

// Profile looks up one role profile, case-insensitively
func (s *Service) Profile(role string) (Profile, error) {
	p, ok := s.profiles[strings.ToLower(role)]
	if !ok {
		return Profile{}, common.ValidationError("unknown stakeholder role: %s", role)
	}
	return p, nil
}

// View filters PRD content for a role by removing hidden sections
func (s *Service) View(prdContent, role string) (string, error) {
	profile, err := s.Profile(role)
	if err != nil {
		return "", err
	}
	return FilterSections(prdContent, profile.HidePhrases), nil
}

// Summarize generates a role-focused summary of the PRD
func (s *Service) Summarize(ctx context.Context, prdContent, role string) (string, error) {
	profile, err := s.Profile(role)
	if err != nil {
		return "", err
	}
	if s.llm == nil {
		return "", common.UnavailableError("AI service is not configured")
	}

	reply, err := s.llm.Chat(ctx, []interfaces.Message{
		{Role: "system", Content: profile.SummaryPrompt},
		{Role: "user", Content: prdContent},
	})
	if err != nil {
		return "", common.UnavailableError("summary generation failed: %s", err.Error())
	}

	summary := strings.TrimSpace(reply)
	if summary == "" {
		return "", common.NoOutputError("AI returned an empty summary")
	}
	return summary, nil
}
