package usecase

import (
	"context"

	"github.com/mizuleaf/callscope/internal/domain"
)

// RuleUsecase manages the knowledge rules fed into analysis prompts.
type RuleUsecase struct {
	rules RuleRepository
}

func NewRuleUsecase(rules RuleRepository) *RuleUsecase {
	return &RuleUsecase{rules: rules}
}

func (uc *RuleUsecase) Create(ctx context.Context, rule domain.KnowledgeRule) (domain.KnowledgeRule, error) {
	if rule.Title == "" {
		return domain.KnowledgeRule{}, domain.ValidationError{Reason: "title is required"}
	}
	if rule.Content == "" {
		return domain.KnowledgeRule{}, domain.ValidationError{Reason: "content is required"}
	}
	return uc.rules.Create(ctx, rule)
}

func (uc *RuleUsecase) Get(ctx context.Context, id string) (domain.KnowledgeRule, error) {
	return uc.rules.Get(ctx, id)
}

func (uc *RuleUsecase) Update(ctx context.Context, rule domain.KnowledgeRule) (domain.KnowledgeRule, error) {
	if rule.ID == "" {
		return domain.KnowledgeRule{}, domain.ValidationError{Reason: "id is required"}
	}
	if rule.Title == "" {
		return domain.KnowledgeRule{}, domain.ValidationError{Reason: "title is required"}
	}
	if rule.Content == "" {
		return domain.KnowledgeRule{}, domain.ValidationError{Reason: "content is required"}
	}
	return uc.rules.Update(ctx, rule)
}

func (uc *RuleUsecase) Delete(ctx context.Context, id string) error {
	return uc.rules.Delete(ctx, id)
}

func (uc *RuleUsecase) List(ctx context.Context) ([]domain.KnowledgeRule, error) {
	return uc.rules.List(ctx)
}
