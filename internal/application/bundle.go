// Package application provides the core business logic and orchestration for
// the credit decision service.
package application

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-underwrite/internal/domain"
)

// BundleConfig is the on-disk artifact bundle: everything the service
// loads once at startup and treats as read-only for the process
// lifetime. One file carries the raw-input schema, the feature
// manifest and encoding plan, the decision thresholds, the trained
// model parameters, and the optional explainer baseline.
type BundleConfig struct {
	// Model holds the trained model identity and parameters.
	Model ModelSpec `yaml:"model" validate:"required"`

	// Thresholds holds the decision cut points. Absent values fall
	// back to the defaults (approve 0.3, conditional 0.6).
	Thresholds ThresholdSpec `yaml:"thresholds"`

	// RawSchema maps every required applicant field to its expected
	// kind: int, float, or string.
	RawSchema map[string]string `yaml:"raw_schema" validate:"required,min=1"`

	// Features declares the model's input contract and how engineered
	// columns are derived from cleaned raw fields.
	Features FeatureSpec `yaml:"features" validate:"required"`

	// Explainer configures the optional explanation capability.
	// When the section is absent the capability is unavailable in
	// this deployment and explain requests are rejected as such.
	Explainer *ExplainerSpec `yaml:"explainer,omitempty"`
}

// ModelSpec holds the trained model identity and its parameters.
type ModelSpec struct {
	// Name is the model identifier reported in every result payload.
	Name string `yaml:"name" validate:"required,min=1,max=255"`

	// Version is the artifact version using semantic versioning.
	Version string `yaml:"version" validate:"required,semver"`

	// Coefficients maps each manifest feature to its trained weight.
	Coefficients map[string]float64 `yaml:"coefficients" validate:"required,min=1"`

	// Intercept is the model bias term.
	Intercept float64 `yaml:"intercept"`

	// Calibrated reports whether the model's probabilities are
	// trustworthy. When false the service treats the model as
	// class-only and every decision is UNKNOWN. Defaults to true.
	Calibrated *bool `yaml:"calibrated,omitempty"`
}

// ThresholdSpec holds the optional decision cut points. Pointer fields
// distinguish an absent value from an explicit zero.
type ThresholdSpec struct {
	// Approve is the upper bound (exclusive) of the APPROVE band.
	Approve *float64 `yaml:"approve" validate:"omitempty,min=0,max=1"`

	// Conditional is the upper bound (exclusive) of the
	// CONDITIONAL_APPROVAL band.
	Conditional *float64 `yaml:"conditional" validate:"omitempty,min=0,max=1"`
}

// Default decision thresholds, used when the bundle omits them.
const (
	DefaultApproveThreshold     = 0.3
	DefaultConditionalThreshold = 0.6
)

// FeatureSpec declares the feature manifest and the encoding plan the
// feature builder follows.
type FeatureSpec struct {
	// Names is the ordered feature manifest, the model's exact input
	// contract.
	Names []string `yaml:"names" validate:"required,min=1"`

	// NumFeatures is the declared feature count, cross-checked against
	// every engineered table.
	NumFeatures int `yaml:"num_features" validate:"required,min=1"`

	// Numeric lists raw fields copied through as numeric columns.
	Numeric []string `yaml:"numeric" validate:"dive,min=1"`

	// Categorical lists raw fields expanded into one-hot indicator
	// columns, one per declared level.
	Categorical []CategoricalSpec `yaml:"categorical" validate:"dive"`
}

// CategoricalSpec declares the one-hot encoding for one raw field.
// Each level yields a column named "<field>_<level>".
type CategoricalSpec struct {
	// Field is the raw field to encode.
	Field string `yaml:"field" validate:"required,min=1"`

	// Levels lists the known category values.
	Levels []string `yaml:"levels" validate:"required,min=1,dive,min=1"`
}

// Column returns the engineered column name for one level of the field.
func (c CategoricalSpec) Column(level string) string {
	return c.Field + "_" + level
}

// ExplainerSpec configures the linear contribution explainer.
type ExplainerSpec struct {
	// Baseline maps each manifest feature to its reference value,
	// typically the training-set mean.
	Baseline map[string]float64 `yaml:"baseline" validate:"required,min=1"`
}

// Bundle is the validated, immutable runtime form of the artifact
// bundle. It is built once at startup and passed by reference into
// each component; no holder ever mutates it.
type Bundle struct {
	// Schema is the raw-input contract.
	Schema domain.RawSchema

	// Manifest is the model's feature contract.
	Manifest *domain.FeatureManifest

	// Thresholds holds the validated decision cut points.
	Thresholds domain.Thresholds

	// Model holds the model identity and parameters for the scorer.
	Model ModelSpec

	// Features holds the encoding plan for the feature builder.
	Features FeatureSpec

	// Explainer holds the explainer baseline, or nil when the
	// capability is absent from this deployment.
	Explainer *ExplainerSpec
}

// Calibrated reports whether the model exposes trustworthy
// probabilities. Absent means calibrated.
func (b *Bundle) Calibrated() bool {
	return b.Model.Calibrated == nil || *b.Model.Calibrated
}

// ExplainAvailable reports whether the explanation capability is
// present in this deployment. The flag is resolved here, once, at
// load time rather than through failed construction at request time.
func (b *Bundle) ExplainAvailable() bool { return b.Explainer != nil }

// BundleLoader parses, validates, and builds artifact bundles.
// Use BundleLoader at startup; the resulting Bundle is immutable.
type BundleLoader struct {
	// validator performs struct field validation and custom validation
	// rules for bundle configurations.
	validator *validator.Validate
}

// NewBundleLoader creates a bundle loader with validation capabilities.
// NewBundleLoader returns an error if validator registration fails.
func NewBundleLoader() (*BundleLoader, error) {
	v := validator.New()

	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return nil, fmt.Errorf("failed to register semver validator: %w", err)
	}

	return &BundleLoader{validator: v}, nil
}

// LoadFromFile loads and validates an artifact bundle from a YAML file.
// LoadFromFile returns an error if file reading, parsing, validation,
// or bundle construction fails.
func (bl *BundleLoader) LoadFromFile(path string) (*Bundle, error) {
	// Clean the path to prevent directory traversal attacks.
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return bl.load(data)
}

// LoadFromReader loads and validates an artifact bundle from an
// io.Reader, supporting any source that implements the Reader interface.
func (bl *BundleLoader) LoadFromReader(r io.Reader) (*Bundle, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	return bl.load(data)
}

// load parses, validates, and builds the runtime bundle.
func (bl *BundleLoader) load(data []byte) (*Bundle, error) {
	config, err := bl.parseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := bl.validator.Struct(config); err != nil {
		return nil, fmt.Errorf("struct validation failed: %w", err)
	}

	bundle, err := bl.build(config)
	if err != nil {
		return nil, fmt.Errorf("semantic validation failed: %w", err)
	}

	return bundle, nil
}

// parseYAML unmarshals YAML byte data into a BundleConfig.
// parseYAML uses strict decoding to detect unknown fields, preventing
// configuration typos from being silently ignored.
func (bl *BundleLoader) parseYAML(data []byte) (*BundleConfig, error) {
	var config BundleConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Strict mode - fail on unknown fields.

	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	return &config, nil
}

// build performs domain-specific validation that cannot be expressed
// through struct tags and assembles the immutable runtime bundle:
// schema kinds, manifest consistency, threshold ordering, and full
// agreement between the encoding plan and the manifest.
func (bl *BundleLoader) build(config *BundleConfig) (*Bundle, error) {
	kinds := make(map[string]domain.FieldKind, len(config.RawSchema))
	for field, kind := range config.RawSchema {
		kinds[field] = domain.FieldKind(kind)
	}
	schema, err := domain.NewRawSchema(kinds)
	if err != nil {
		return nil, fmt.Errorf("raw schema: %w", err)
	}

	if config.Features.NumFeatures != len(config.Features.Names) {
		return nil, fmt.Errorf("features declares num_features=%d but lists %d names",
			config.Features.NumFeatures, len(config.Features.Names))
	}
	manifest, err := domain.NewFeatureManifest(config.Features.Names, config.Features.NumFeatures)
	if err != nil {
		return nil, fmt.Errorf("feature manifest: %w", err)
	}

	thresholds := domain.Thresholds{
		Approve:     DefaultApproveThreshold,
		Conditional: DefaultConditionalThreshold,
	}
	if config.Thresholds.Approve != nil {
		thresholds.Approve = *config.Thresholds.Approve
	}
	if config.Thresholds.Conditional != nil {
		thresholds.Conditional = *config.Thresholds.Conditional
	}
	if err := thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("thresholds: %w", err)
	}

	if err := bl.validatePlan(config, schema, manifest); err != nil {
		return nil, err
	}

	return &Bundle{
		Schema:     schema,
		Manifest:   manifest,
		Thresholds: thresholds,
		Model:      config.Model,
		Features:   config.Features,
		Explainer:  config.Explainer,
	}, nil
}

// validatePlan cross-checks the encoding plan against the raw schema
// and the manifest so that a bundle whose parts disagree is rejected
// at startup instead of failing every request. Every plan field must
// exist in the raw schema with a compatible kind, and the columns the
// plan produces must equal the manifest name set exactly.
func (bl *BundleLoader) validatePlan(config *BundleConfig, schema domain.RawSchema, manifest *domain.FeatureManifest) error {
	produced := make(map[string]struct{}, manifest.Count())

	for _, field := range config.Features.Numeric {
		kind, ok := schema.Kind(field)
		if !ok {
			return fmt.Errorf("numeric feature %q is not declared in the raw schema", field)
		}
		if kind != domain.KindInt && kind != domain.KindFloat {
			return fmt.Errorf("numeric feature %q has kind %q, want int or float", field, kind)
		}
		if _, dup := produced[field]; dup {
			return fmt.Errorf("feature plan produces column %q more than once", field)
		}
		produced[field] = struct{}{}
	}

	for _, cat := range config.Features.Categorical {
		kind, ok := schema.Kind(cat.Field)
		if !ok {
			return fmt.Errorf("categorical feature %q is not declared in the raw schema", cat.Field)
		}
		if kind != domain.KindString {
			return fmt.Errorf("categorical feature %q has kind %q, want string", cat.Field, kind)
		}
		for _, level := range cat.Levels {
			column := cat.Column(level)
			if _, dup := produced[column]; dup {
				return fmt.Errorf("feature plan produces column %q more than once", column)
			}
			produced[column] = struct{}{}
		}
	}

	for _, name := range manifest.Names() {
		if _, ok := produced[name]; !ok {
			return fmt.Errorf("manifest feature %q is not produced by the encoding plan", name)
		}
	}
	for column := range produced {
		if !manifest.Contains(column) {
			return fmt.Errorf("encoding plan produces column %q that the manifest does not declare", column)
		}
	}

	return nil
}

// validateSemver validates that a string follows semantic versioning
// format (X.Y.Z where X, Y, Z are non-negative integers).
func validateSemver(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	var major, minor, patch int
	n, err := fmt.Sscanf(value, "%d.%d.%d", &major, &minor, &patch)
	return err == nil && n == 3
}
