package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mizuleaf/callscope/internal/domain"
	"github.com/mizuleaf/callscope/internal/infrastructure/database/models"
)

type RuleRepository struct {
	db *gorm.DB
}

func NewRuleRepository(db *gorm.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

func ruleToDomain(m models.KnowledgeRule) domain.KnowledgeRule {
	return domain.KnowledgeRule{
		ID:                 m.ID,
		Title:              m.Title,
		Category:           m.Category,
		Content:            m.Content,
		PromptInstructions: m.PromptInstructions,
		IsActive:           m.IsActive,
		CDate:              m.CDate,
	}
}

func (r *RuleRepository) Create(ctx context.Context, rule domain.KnowledgeRule) (domain.KnowledgeRule, error) {
	m := models.KnowledgeRule{
		ID:                 uuid.NewString(),
		Title:              rule.Title,
		Category:           rule.Category,
		Content:            rule.Content,
		PromptInstructions: rule.PromptInstructions,
		IsActive:           true,
	}
	err := r.db.WithContext(ctx).Create(&m).Error
	if err != nil {
		return domain.KnowledgeRule{}, err
	}
	return ruleToDomain(m), nil
}

func (r *RuleRepository) Update(ctx context.Context, rule domain.KnowledgeRule) (domain.KnowledgeRule, error) {
	updates := map[string]any{
		"title":               rule.Title,
		"category":            rule.Category,
		"content":             rule.Content,
		"prompt_instructions": rule.PromptInstructions,
		"is_active":           rule.IsActive,
	}

	res := r.db.WithContext(ctx).
		Model(&models.KnowledgeRule{}).
		Where("id = ?", rule.ID).
		Updates(updates)
	if res.Error != nil {
		return domain.KnowledgeRule{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.KnowledgeRule{}, domain.NotFoundError{Resource: "knowledge rule"}
	}

	return r.Get(ctx, rule.ID)
}

func (r *RuleRepository) Get(ctx context.Context, id string) (domain.KnowledgeRule, error) {
	var m models.KnowledgeRule
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.KnowledgeRule{}, domain.NotFoundError{Resource: "knowledge rule"}
		}
		return domain.KnowledgeRule{}, err
	}
	return ruleToDomain(m), nil
}

func (r *RuleRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Delete(&models.KnowledgeRule{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "knowledge rule"}
	}
	return nil
}

func (r *RuleRepository) List(ctx context.Context) ([]domain.KnowledgeRule, error) {
	var rules []models.KnowledgeRule
	err := r.db.WithContext(ctx).
		Order("cdate DESC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}

	result := make([]domain.KnowledgeRule, 0, len(rules))
	for _, rule := range rules {
		result = append(result, ruleToDomain(rule))
	}
	return result, nil
}

func (r *RuleRepository) ListActive(ctx context.Context) ([]domain.KnowledgeRule, error) {
	var rules []models.KnowledgeRule
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("cdate ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}

	result := make([]domain.KnowledgeRule, 0, len(rules))
	for _, rule := range rules {
		result = append(result, ruleToDomain(rule))
	}
	return result, nil
}
