package repository

import (
	"context"
	"errors"
	"fmt"

	"solicitations/internal/models"

	"gorm.io/gorm"
)

func preloadClins(db *gorm.DB) *gorm.DB {
	return db.Preload("Clins", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, created_at ASC")
	})
}

func (repo *Repository) GetSolicitations(ctx context.Context) ([]models.Solicitation, error) {
	var result []models.Solicitation

	err := preloadClins(repo.db.WithContext(ctx)).
		Order("created_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.GetSolicitations: %w", err)
	}

	err = repo.fillCounts(repo.db.WithContext(ctx), result)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.GetSolicitations: %w", err)
	}

	return result, nil
}

// GetSolicitationById reads through tx when it is not nil.
func (repo *Repository) GetSolicitationById(ctx context.Context, id string, tx *gorm.DB) (models.Solicitation, error) {
	var solicitation models.Solicitation

	if tx == nil {
		tx = repo.db
	}
	tx = tx.WithContext(ctx)

	err := preloadClins(tx).Where("id = ?", id).Take(&solicitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return solicitation, fmt.Errorf("repository.Repository.GetSolicitationById: %s: %w", id, models.ErrNoSolicitation)
	} else if err != nil {
		return solicitation, fmt.Errorf("repository.Repository.GetSolicitationById: %w", err)
	}

	list := []models.Solicitation{solicitation}
	err = repo.fillCounts(tx, list)
	if err != nil {
		return solicitation, fmt.Errorf("repository.Repository.GetSolicitationById: %w", err)
	}

	return list[0], nil
}

// AddSolicitation inserts the solicitation together with its CLINs.
func (repo *Repository) AddSolicitation(ctx context.Context, s models.Solicitation) (models.Solicitation, error) {
	result := s
	result.Clins = append([]models.Clin(nil), s.Clins...)
	for i := range result.Clins {
		result.Clins[i].Position = i
	}
	result.Count = models.SolicitationCount{}

	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&result).Error
	})
	if err != nil {
		return s, fmt.Errorf("repository.Repository.AddSolicitation: %w", err)
	}

	if result.Clins == nil {
		result.Clins = []models.Clin{}
	}
	return result, nil
}

// UpdateSolicitation applies the columns in u.Fields and, when requested,
// swaps the CLIN collection for u.Clins. Both happen in one transaction.
// An empty update only reads the solicitation back.
func (repo *Repository) UpdateSolicitation(ctx context.Context, id string, u models.SolicitationUpdate) (models.Solicitation, error) {
	var result models.Solicitation

	if u.Empty() {
		result, err := repo.GetSolicitationById(ctx, id, nil)
		if err != nil {
			return result, fmt.Errorf("repository.Repository.UpdateSolicitation: %w", err)
		}
		return result, nil
	}

	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Solicitation
		err := tx.Where("id = ?", id).Take(&current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%s: %w", id, models.ErrNoSolicitation)
		} else if err != nil {
			return err
		}

		if u.ReplaceClins {
			deleted, err := repo.replaceClins(tx, id, u.Clins)
			if err != nil {
				return err
			}
			repo.log.Debug("clins replaced",
				"solicitation", id,
				"deleted", deleted,
				"created", len(u.Clins),
			)
		}

		if len(u.Fields) > 0 {
			err = tx.Model(&current).Updates(u.Fields).Error
			if err != nil {
				return err
			}
		}

		result, err = repo.GetSolicitationById(ctx, id, tx)
		return err
	})
	if err != nil {
		return result, fmt.Errorf("repository.Repository.UpdateSolicitation: %w", err)
	}

	return result, nil
}

func (repo *Repository) replaceClins(tx *gorm.DB, solicitationId string, clins []models.Clin) (int64, error) {
	res := tx.Where("solicitation_id = ?", solicitationId).Delete(&models.Clin{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete clins: %w", res.Error)
	}

	if len(clins) == 0 {
		return res.RowsAffected, nil
	}

	fresh := make([]models.Clin, len(clins))
	for i, clin := range clins {
		clin.Id = ""
		clin.SolicitationId = solicitationId
		clin.Position = i
		fresh[i] = clin
	}

	err := tx.Create(&fresh).Error
	if err != nil {
		return res.RowsAffected, fmt.Errorf("create clins: %w", err)
	}
	return res.RowsAffected, nil
}

func (repo *Repository) DeleteSolicitation(ctx context.Context, id string) error {
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Clin{}, &models.Proposal{}, &models.Question{}} {
			if err := tx.Where("solicitation_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&models.Solicitation{}).Error
	})
	if err != nil {
		return fmt.Errorf("repository.Repository.DeleteSolicitation: %w", err)
	}
	return nil
}

//// Related rows

func (repo *Repository) AddProposal(ctx context.Context, p models.Proposal) (models.Proposal, error) {
	err := repo.db.WithContext(ctx).Create(&p).Error
	if err != nil {
		return p, fmt.Errorf("repository.Repository.AddProposal: %w", err)
	}
	return p, nil
}

func (repo *Repository) AddQuestion(ctx context.Context, q models.Question) (models.Question, error) {
	err := repo.db.WithContext(ctx).Create(&q).Error
	if err != nil {
		return q, fmt.Errorf("repository.Repository.AddQuestion: %w", err)
	}
	return q, nil
}

type relationCount struct {
	SolicitationId string
	N              int64
}

// fillCounts sets Count and replaces nil CLIN lists, in place.
func (repo *Repository) fillCounts(db *gorm.DB, list []models.Solicitation) error {
	if len(list) == 0 {
		return nil
	}

	ids := make([]string, len(list))
	for i := range list {
		ids[i] = list[i].Id
	}

	proposals, err := countBySolicitation(db, &models.Proposal{}, ids)
	if err != nil {
		return fmt.Errorf("count proposals: %w", err)
	}
	questions, err := countBySolicitation(db, &models.Question{}, ids)
	if err != nil {
		return fmt.Errorf("count questions: %w", err)
	}

	for i := range list {
		list[i].Count = models.SolicitationCount{
			Proposals: proposals[list[i].Id],
			Questions: questions[list[i].Id],
		}
		if list[i].Clins == nil {
			list[i].Clins = []models.Clin{}
		}
	}
	return nil
}

func countBySolicitation(db *gorm.DB, model any, ids []string) (map[string]int64, error) {
	var rows []relationCount

	err := db.Model(model).
		Select("solicitation_id, COUNT(*) AS n").
		Where("solicitation_id IN ?", ids).
		Group("solicitation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.SolicitationId] = row.N
	}
	return counts, nil
}
