package repository

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

var duplicateKey = mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}}}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil, "op"))
	assert.ErrorIs(t, translate(mongo.ErrNoDocuments, "op"), ErrNotFound)
	assert.ErrorIs(t, translate(duplicateKey, "op"), ErrDuplicate)

	err := translate(errors.New("socket closed"), "userRepo.GetUserByID")
	assert.Contains(t, err.Error(), "userRepo.GetUserByID")
	assert.NotErrorIs(t, err, ErrDuplicate)
}

func TestBenignDuplicateOutsideSession(t *testing.T) {
	ctx := context.Background()
	assert.True(t, benignDuplicate(ctx, duplicateKey))
	assert.False(t, benignDuplicate(ctx, errors.New("timeout")))
	assert.False(t, benignDuplicate(ctx, nil))
}
