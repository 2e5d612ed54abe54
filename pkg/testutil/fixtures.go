package testutil

import (
	"time"

	"github.com/google/uuid"

	authmodels "vertical/internal/auth/models"
	relmodels "vertical/internal/reliability/models"
	id "vertical/pkg/domain"
)

// ContractBuilder provides a fluent interface for building test contracts.
type ContractBuilder struct {
	contract *authmodels.Contract
}

// NewContractBuilder creates a valid, never-expiring contract.
func NewContractBuilder() *ContractBuilder {
	return &ContractBuilder{
		contract: &authmodels.Contract{
			ID:        id.ContractID(uuid.New()),
			ClientID:  id.ClientID(uuid.New()),
			Token:     "token-" + uuid.NewString(),
			CreatedAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func (b *ContractBuilder) WithToken(token string) *ContractBuilder {
	b.contract.Token = token
	return b
}

func (b *ContractBuilder) ExpiredAt(at time.Time) *ContractBuilder {
	b.contract.ExpiredAt = &at
	return b
}

func (b *ContractBuilder) RevokedAt(at time.Time) *ContractBuilder {
	b.contract.RevokedAt = &at
	return b
}

func (b *ContractBuilder) Build() *authmodels.Contract {
	c := *b.contract
	return &c
}

// SubmissionBuilder builds history rows for one phone digest.
type SubmissionBuilder struct {
	phoneHash string
	subs      []relmodels.Submission
}

func NewSubmissionBuilder(phoneHash string) *SubmissionBuilder {
	return &SubmissionBuilder{phoneHash: phoneHash}
}

// On adds a submission by the person identified by name and birthday, dated
// YYYY-MM-DD.
func (b *SubmissionBuilder) On(name, birthday, date string) *SubmissionBuilder {
	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		panic("testutil: bad submission date " + date)
	}
	b.subs = append(b.subs, relmodels.Submission{
		ID:           uuid.NewString()[:10],
		Date:         d,
		PhoneHash:    b.phoneHash,
		NameHash:     name,
		BirthdayHash: birthday,
	})
	return b
}

func (b *SubmissionBuilder) Build() []relmodels.Submission {
	return append([]relmodels.Submission(nil), b.subs...)
}
