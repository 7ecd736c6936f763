package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"solicitations/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddSolicitation(t *testing.T) {
	ctx := context.Background()
	repo := OpenTestRepo(t)

	input := RandomSolicitation(3)
	s, err := repo.AddSolicitation(ctx, input)
	require.NoError(t, err)

	assert.NotEmpty(t, s.Id)
	assert.Equal(t, models.SolicitationDraft, s.Status)
	assert.Equal(t, input.Number, s.Number)
	assert.Equal(t, input.Title, s.Title)
	require.Len(t, s.Clins, 3)
	for _, clin := range s.Clins {
		assert.NotEmpty(t, clin.Id)
		assert.Equal(t, s.Id, clin.SolicitationId)
	}

	stored, err := repo.GetSolicitationById(ctx, s.Id, nil)
	require.NoError(t, err)
	assert.Equal(t, input.Number, stored.Number)
	assert.True(t, input.DueDate.Equal(stored.DueDate))
	require.NotNil(t, stored.QuestionCutoffDate)
	assert.Nil(t, stored.ProposalCutoffDate)
	assert.Equal(t, clinContent(input.Clins), clinContent(stored.Clins))

	// cleanup
	require.NoError(t, repo.DeleteSolicitation(ctx, s.Id))
	_, err = repo.GetSolicitationById(ctx, s.Id, nil)
	assert.ErrorIs(t, err, models.ErrNoSolicitation)
}

func TestGetSolicitations(t *testing.T) {
	ctx := context.Background()
	repo := OpenTestRepo(t)

	list, err := repo.GetSolicitations(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	withClins, err := repo.AddSolicitation(ctx, RandomSolicitation(2))
	require.NoError(t, err)
	withoutClins, err := repo.AddSolicitation(ctx, RandomSolicitation(0))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = repo.AddProposal(ctx, models.Proposal{SolicitationId: withClins.Id, Title: "proposal"})
		require.NoError(t, err)
	}
	_, err = repo.AddQuestion(ctx, models.Question{SolicitationId: withClins.Id, Text: "question"})
	require.NoError(t, err)

	list, err = repo.GetSolicitations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byId := map[string]models.Solicitation{}
	for _, s := range list {
		byId[s.Id] = s
	}

	assert.Len(t, byId[withClins.Id].Clins, 2)
	assert.Equal(t, models.SolicitationCount{Proposals: 3, Questions: 1}, byId[withClins.Id].Count)

	assert.NotNil(t, byId[withoutClins.Id].Clins)
	assert.Empty(t, byId[withoutClins.Id].Clins)
	assert.Equal(t, models.SolicitationCount{}, byId[withoutClins.Id].Count)
}

func TestUpdateSolicitationFields(t *testing.T) {
	ctx := context.Background()
	repo := OpenTestRepo(t)

	s, err := repo.AddSolicitation(ctx, RandomSolicitation(2))
	require.NoError(t, err)

	due := time.Date(2030, 1, 15, 0, 0, 0, 0, time.UTC)
	periods := `[{"id":"base","name":"Base Period"}]`
	updated, err := repo.UpdateSolicitation(ctx, s.Id, models.SolicitationUpdate{
		Fields: map[string]any{
			"title":                "Updated title",
			"due_date":             due,
			"question_cutoff_date": nil,
			"evaluation_periods":   periods,
			"status":               "open",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Updated title", updated.Title)
	assert.True(t, due.Equal(updated.DueDate))
	assert.Nil(t, updated.QuestionCutoffDate)
	require.NotNil(t, updated.EvaluationPeriods)
	assert.Equal(t, periods, *updated.EvaluationPeriods)
	assert.Equal(t, "open", updated.Status)

	// untouched fields and clins survive
	assert.Equal(t, s.Number, updated.Number)
	assert.Equal(t, s.Agency, updated.Agency)
	assert.Equal(t, s.Description, updated.Description)
	assert.Len(t, updated.Clins, 2)
}

func TestUpdateSolicitationReplacesClins(t *testing.T) {
	ctx := context.Background()
	repo := OpenTestRepo(t)

	s, err := repo.AddSolicitation(ctx, RandomSolicitation(4))
	require.NoError(t, err)
	other, err := repo.AddSolicitation(ctx, RandomSolicitation(2))
	require.NoError(t, err)

	replacement := make([]models.Clin, 8)
	for i := range replacement {
		replacement[i] = RandomClin()
		replacement[i].Name = fmt.Sprintf("CLIN-%d", i+1)
	}
	updated, err := repo.UpdateSolicitation(ctx, s.Id, models.SolicitationUpdate{
		Clins:        replacement,
		ReplaceClins: true,
	})
	require.NoError(t, err)

	require.Len(t, updated.Clins, len(replacement))
	assert.Equal(t, clinContent(replacement), clinContent(updated.Clins))

	// the submitted order survives a fresh read
	reread, err := repo.GetSolicitationById(ctx, s.Id, nil)
	require.NoError(t, err)
	assert.Equal(t, clinContent(replacement), clinContent(reread.Clins))
	for _, clin := range updated.Clins {
		assert.Equal(t, s.Id, clin.SolicitationId)
		for _, old := range s.Clins {
			assert.NotEqual(t, old.Id, clin.Id)
		}
	}

	var total int64
	require.NoError(t, repo.db.Model(&models.Clin{}).Where("solicitation_id = ?", s.Id).Count(&total).Error)
	assert.EqualValues(t, len(replacement), total)

	// other solicitations keep their clins
	stored, err := repo.GetSolicitationById(ctx, other.Id, nil)
	require.NoError(t, err)
	assert.Len(t, stored.Clins, 2)

	// an empty list removes every clin
	updated, err = repo.UpdateSolicitation(ctx, s.Id, models.SolicitationUpdate{Clins: []models.Clin{}, ReplaceClins: true})
	require.NoError(t, err)
	assert.Empty(t, updated.Clins)
	assert.Equal(t, s.Title, updated.Title)
}

func TestUpdateSolicitationMissing(t *testing.T) {
	ctx := context.Background()
	repo := OpenTestRepo(t)

	s, err := repo.AddSolicitation(ctx, RandomSolicitation(1))
	require.NoError(t, err)

	_, err = repo.UpdateSolicitation(ctx, "00000000-0000-0000-0000-000000000000", models.SolicitationUpdate{
		Fields:       map[string]any{"title": "nobody"},
		Clins:        []models.Clin{RandomClin()},
		ReplaceClins: true,
	})
	assert.ErrorIs(t, err, models.ErrNoSolicitation)

	// nothing leaked into the existing solicitation
	stored, err := repo.GetSolicitationById(ctx, s.Id, nil)
	require.NoError(t, err)
	assert.Len(t, stored.Clins, 1)
}

func TestUpdateSolicitationRollback(t *testing.T) {
	ctx := context.Background()
	repo := OpenTestRepo(t)

	s, err := repo.AddSolicitation(ctx, RandomSolicitation(3))
	require.NoError(t, err)

	// due_date is NOT NULL, the update fails after the clins were swapped
	_, err = repo.UpdateSolicitation(ctx, s.Id, models.SolicitationUpdate{
		Fields:       map[string]any{"due_date": nil},
		Clins:        []models.Clin{RandomClin()},
		ReplaceClins: true,
	})
	require.Error(t, err)

	stored, err := repo.GetSolicitationById(ctx, s.Id, nil)
	require.NoError(t, err)
	assert.Equal(t, clinContent(s.Clins), clinContent(stored.Clins))
}

func TestUpdateSolicitationEmpty(t *testing.T) {
	ctx := context.Background()
	repo := OpenTestRepo(t)

	s, err := repo.AddSolicitation(ctx, RandomSolicitation(2))
	require.NoError(t, err)

	same, err := repo.UpdateSolicitation(ctx, s.Id, models.SolicitationUpdate{Fields: map[string]any{}})
	require.NoError(t, err)
	assert.Equal(t, s.Title, same.Title)
	assert.True(t, s.UpdatedAt.Equal(same.UpdatedAt))
	assert.Equal(t, clinContent(s.Clins), clinContent(same.Clins))

	_, err = repo.UpdateSolicitation(ctx, "00000000-0000-0000-0000-000000000000", models.SolicitationUpdate{})
	assert.ErrorIs(t, err, models.ErrNoSolicitation)
}

type clinFields struct {
	Name, Description, PricingModel, PeriodId string
}

func clinContent(clins []models.Clin) []clinFields {
	result := make([]clinFields, 0, len(clins))
	for _, c := range clins {
		f := clinFields{Name: c.Name, Description: c.Description, PricingModel: c.PricingModel}
		if c.PeriodId != nil {
			f.PeriodId = *c.PeriodId
		}
		result = append(result, f)
	}
	return result
}
