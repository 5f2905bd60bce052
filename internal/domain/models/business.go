// Package models contains domain models for the CrewHub Chatbot Service.
package models

import "time"

// OperationType is the vertical a business operates in.
type OperationType string

const (
	OperationConstruction OperationType = "construction"
	OperationHospitality  OperationType = "hospitality"
	OperationWorkforce    OperationType = "workforce"
)

// Business is the tenant profile, read-only from this service's
// perspective. APIKey authenticates inbound chat requests; Name and
// IncludedFeatures feed response personalization and the knowledge-first
// feature gate.
type Business struct {
	ID               string        `json:"id" bson:"_id"`
	Name             string        `json:"name" bson:"name"`
	ClientID         string        `json:"clientId" bson:"clientId"`
	OperationType    OperationType `json:"operationType" bson:"operationType"`
	IncludedFeatures []string      `json:"includedFeatures" bson:"includedFeatures"`
	APIKey           string        `json:"-" bson:"apiKey"`
	CreatedAt        time.Time     `json:"createdAt" bson:"createdAt"`
}

// HasFeature reports whether the business plan includes the named feature.
func (b *Business) HasFeature(feature string) bool {
	for _, f := range b.IncludedFeatures {
		if f == feature {
			return true
		}
	}
	return false
}

// User is a member of a business, used only for display names in
// responses and session summaries.
type User struct {
	ID    string `json:"id" bson:"_id"`
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
}
