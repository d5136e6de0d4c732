package utils

import (
	"github.com/google/uuid"

	"github.com/MKhiriev/go-outbox/models"
)

type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}

// GenerateTemporary returns a fresh temporary identifier that can stand in
// for a server-assigned one until the owning CREATE is confirmed.
func (g *UUIDGenerator) GenerateTemporary() string {
	return models.TempIDPrefix + g.Generate()
}
