package types

import (
	"encoding/json"
	"testing"
)

func TestEntityValidation(t *testing.T) {
	tests := []struct {
		name    string
		entity  Entity
		wantErr error
	}{
		{
			name: "valid entity",
			entity: Entity{
				Name:       "Honda Civic",
				Type:       "car",
				Confidence: 0.9,
			},
			wantErr: nil,
		},
		{
			name: "empty name",
			entity: Entity{
				Name: "",
				Type: "car",
			},
			wantErr: ErrEmptyName,
		},
		{
			name: "whitespace-only name",
			entity: Entity{
				Name: "   \t ",
				Type: "car",
			},
			wantErr: ErrEmptyName,
		},
		{
			name: "single character name",
			entity: Entity{
				Name: "x",
			},
			wantErr: ErrInvalidName,
		},
		{
			name: "no alphanumeric characters",
			entity: Entity{
				Name: "!!",
			},
			wantErr: ErrInvalidName,
		},
		{
			name: "two characters with digit",
			entity: Entity{
				Name: "A1",
			},
			wantErr: nil,
		},
		{
			name: "confidence out of range",
			entity: Entity{
				Name:       "Honda Civic",
				Confidence: 1.5,
			},
			wantErr: ErrInvalidConfidence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entity.Validate()
			if err != tt.wantErr {
				t.Errorf("Entity.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEntityValidateForCreate(t *testing.T) {
	entity := Entity{Name: "Honda Civic"}
	if err := entity.ValidateForCreate(); err != ErrEmptyID {
		t.Errorf("ValidateForCreate() error = %v, want %v", err, ErrEmptyID)
	}

	entity.ID = "entity-1"
	if err := entity.ValidateForCreate(); err != nil {
		t.Errorf("ValidateForCreate() error = %v, want nil", err)
	}
}

func TestEntityProfile(t *testing.T) {
	tests := []struct {
		name   string
		entity Entity
		want   string
	}{
		{
			name:   "all fields",
			entity: Entity{Name: "Honda Civic", Type: "car", Description: "compact sedan"},
			want:   "Honda Civic car compact sedan",
		},
		{
			name:   "name only",
			entity: Entity{Name: "Honda Civic"},
			want:   "Honda Civic",
		},
		{
			name:   "blank description skipped",
			entity: Entity{Name: "Honda Civic", Type: "car", Description: "  "},
			want:   "Honda Civic car",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entity.Profile(); got != tt.want {
				t.Errorf("Profile() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRelationshipValidation(t *testing.T) {
	tests := []struct {
		name    string
		rel     Relationship
		wantErr error
	}{
		{
			name:    "valid relationship",
			rel:     Relationship{Source: "Honda Civic", Target: "engine", Type: "has_part", Confidence: 0.9},
			wantErr: nil,
		},
		{
			name:    "empty source",
			rel:     Relationship{Source: "", Target: "engine", Type: "has_part", Confidence: 0.9},
			wantErr: ErrEmptySource,
		},
		{
			name:    "empty target",
			rel:     Relationship{Source: "Honda Civic", Target: " ", Type: "has_part", Confidence: 0.9},
			wantErr: ErrEmptyTarget,
		},
		{
			name:    "confidence above one",
			rel:     Relationship{Source: "a", Target: "b", Type: "rel", Confidence: 1.5},
			wantErr: ErrInvalidConfidence,
		},
		{
			name:    "negative confidence",
			rel:     Relationship{Source: "a", Target: "b", Type: "rel", Confidence: -0.1},
			wantErr: ErrInvalidConfidence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rel.Validate()
			if err != tt.wantErr {
				t.Errorf("Relationship.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDocumentValidation(t *testing.T) {
	doc := Document{Content: ""}
	if err := doc.Validate(); err != ErrEmptyContent {
		t.Errorf("Validate() error = %v, want %v", err, ErrEmptyContent)
	}

	doc.Content = "The Honda Civic has a reliable engine."
	if err := doc.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
	if err := doc.ValidateForCreate(); err != ErrEmptyID {
		t.Errorf("ValidateForCreate() error = %v, want %v", err, ErrEmptyID)
	}
}

func TestClusterSize(t *testing.T) {
	var nilCluster *EntityCluster
	if got := nilCluster.Size(); got != 0 {
		t.Errorf("Size() on nil cluster = %d, want 0", got)
	}

	cluster := &EntityCluster{
		Canonical: "IBM",
		Members:   []*Entity{{Name: "IBM"}, {Name: "International Business Machines"}},
	}
	if got := cluster.Size(); got != 2 {
		t.Errorf("Size() = %d, want 2", got)
	}
}

func TestEntityJSONRoundTrip(t *testing.T) {
	entity := Entity{
		ID:          "entity-1",
		Name:        "Honda Civic",
		Type:        "car",
		Description: "compact sedan",
		Metadata:    map[string]interface{}{"year": "2020"},
	}

	data, err := json.Marshal(&entity)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded Entity
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Name != entity.Name || decoded.Type != entity.Type {
		t.Errorf("round trip mismatch: got %+v", decoded)
	}
}
