package normalize

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/ralt/rpmexplorer/internal/models"
)

// constructors allocate the typed entity of each kind
var constructors = map[models.Kind]func() any{
	models.KindDBInfo:      func() any { return &models.DBInfo{} },
	models.KindPackages:    func() any { return &models.Package{} },
	models.KindConflicts:   func() any { return &models.Relation{Kind: models.KindConflicts} },
	models.KindEnhances:    func() any { return &models.Relation{Kind: models.KindEnhances} },
	models.KindObsoletes:   func() any { return &models.Relation{Kind: models.KindObsoletes} },
	models.KindProvides:    func() any { return &models.Relation{Kind: models.KindProvides} },
	models.KindRecommends:  func() any { return &models.Relation{Kind: models.KindRecommends} },
	models.KindRequires:    func() any { return &models.Requirement{Relation: models.Relation{Kind: models.KindRequires}} },
	models.KindSuggests:    func() any { return &models.Relation{Kind: models.KindSuggests} },
	models.KindSupplements: func() any { return &models.Relation{Kind: models.KindSupplements} },
	models.KindFiles:       func() any { return &models.File{} },
	models.KindFileList:    func() any { return &models.FileList{} },
	models.KindChangelog:   func() any { return &models.ChangeLog{} },
	models.KindGroup:       func() any { return &models.Group{} },
	models.KindCategory:    func() any { return &models.GroupCategory{} },
	models.KindEnvironment: func() any { return &models.Environment{} },
	models.KindUpdate:      func() any { return &models.Update{} },
}

// Build validates row against the required fields of kind and decodes it
// into the kind's entity. A required field must be present as a key; its
// value may be nil. Fields the entity does not declare are rejected.
func Build(kind models.Kind, row models.Record) (any, error) {
	schema, ok := models.Schemas[kind]
	newEntity, hasConstructor := constructors[kind]
	if !ok || !hasConstructor {
		return nil, &models.PipelineError{
			Type: models.ErrUnknownCategory,
			Err:  fmt.Errorf("no entity for kind %s", kind),
		}
	}

	var missing []string
	for _, name := range schema.Required() {
		if _, present := row[name]; !present {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &models.MissingFieldsError{Kind: kind, Missing: missing}
	}

	entity := newEntity()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      entity,
		TagName:     "mapstructure",
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(map[string]any(row)); err != nil {
		return nil, fmt.Errorf("%s: %w", kind.DisplayName(), err)
	}

	return entity, nil
}
