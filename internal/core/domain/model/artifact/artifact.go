package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// ExpiryPeriod is how long download links for an artifact stay valid.
const ExpiryPeriod = 14 * 24 * time.Hour

// ErrArtifactIsNotConstructed is returned when an Artifact instance was not
// created through NewArtifact or RestoreArtifact.
var ErrArtifactIsNotConstructed = errors.New("Artifact must be created via NewArtifact constructor")

// Artifact is one generated deliverable of an order. The content hash
// doubles as the idempotency key: (order, hash) is unique, so re-storing
// the same batch after a retry inserts nothing.
type Artifact struct {
	id        kernel.UUID
	orderID   kernel.UUID
	typ       Type
	name      string
	hash      string
	uri       string
	sizeBytes int64

	createdAt time.Time
	expiresAt time.Time

	isConstructed bool
}

// HashContent returns the hex content hash used for artifact identity.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// NewArtifact creates an artifact from generated content metadata. The hash
// must be the content hash, not a random value, or storage idempotency breaks.
func NewArtifact(id, orderID kernel.UUID, typ Type, name, hash, uri string, sizeBytes int64) (*Artifact, error) {
	now := time.Now().UTC()
	a := &Artifact{
		createdAt:     now,
		expiresAt:     now.Add(ExpiryPeriod),
		isConstructed: true,
	}

	if err := errors.Join(
		a.setIDs(id, orderID),
		a.setType(typ),
		a.setName(name),
		a.setHash(hash),
		a.setURI(uri),
		a.setSize(sizeBytes),
	); err != nil {
		return nil, err
	}

	return a, nil
}

// RestoreArtifact reconstructs an Artifact from persistence.
func RestoreArtifact(id, orderID kernel.UUID, typ Type, name, hash, uri string, sizeBytes int64, createdAt, expiresAt time.Time) (*Artifact, error) {
	a, err := NewArtifact(id, orderID, typ, name, hash, uri, sizeBytes)
	if err != nil {
		return nil, err
	}
	a.createdAt = createdAt
	a.expiresAt = expiresAt
	return a, nil
}

// Validate ensures the Artifact was created through a constructor.
func (a *Artifact) Validate() error {
	if a == nil || !a.isConstructed {
		return ErrArtifactIsNotConstructed
	}
	return nil
}

// ID returns the artifact's unique identifier.
func (a *Artifact) ID() kernel.UUID { return a.id }

// OrderID returns the owning order.
func (a *Artifact) OrderID() kernel.UUID { return a.orderID }

// Type returns the artifact kind.
func (a *Artifact) Type() Type { return a.typ }

// Name returns the customer-facing file name.
func (a *Artifact) Name() string { return a.name }

// Hash returns the content hash.
func (a *Artifact) Hash() string { return a.hash }

// URI returns the storage location of the artifact content.
func (a *Artifact) URI() string { return a.uri }

// SizeBytes returns the content size.
func (a *Artifact) SizeBytes() int64 { return a.sizeBytes }

// CreatedAt returns the persistence time.
func (a *Artifact) CreatedAt() time.Time { return a.createdAt }

// ExpiresAt returns the end of the download window.
func (a *Artifact) ExpiresAt() time.Time { return a.expiresAt }

// IsExpired reports whether the download window has closed.
func (a *Artifact) IsExpired(now time.Time) bool {
	return now.After(a.expiresAt)
}

func (a *Artifact) setIDs(id, orderID kernel.UUID) error {
	if err := errors.Join(id.Validate(), orderID.Validate()); err != nil {
		return err
	}
	a.id = id
	a.orderID = orderID
	return nil
}

func (a *Artifact) setType(typ Type) error {
	if err := typ.Validate(); err != nil {
		return err
	}
	a.typ = typ
	return nil
}

func (a *Artifact) setName(name string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("artifact name")
	}
	a.name = name
	return nil
}

func (a *Artifact) setHash(hash string) error {
	if hash == "" {
		return errs.NewValueIsRequiredError("artifact hash")
	}
	a.hash = hash
	return nil
}

func (a *Artifact) setURI(uri string) error {
	if uri == "" {
		return errs.NewValueIsRequiredError("artifact uri")
	}
	a.uri = uri
	return nil
}

func (a *Artifact) setSize(sizeBytes int64) error {
	if sizeBytes < 0 {
		return errs.NewValueIsInvalidError("artifact size")
	}
	a.sizeBytes = sizeBytes
	return nil
}
