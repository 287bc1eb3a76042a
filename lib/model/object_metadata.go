package model

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

type SignatureKind string

const (
	SignatureNone    SignatureKind = ""
	SignaturePGP     SignatureKind = "pgp"
	SignatureSSH     SignatureKind = "ssh"
	SignatureX509    SignatureKind = "x509"
	SignatureGPGSig  SignatureKind = "gpgsig"
	SignatureUnknown SignatureKind = "unknown"
)

type ObjectMetadataParams struct {
	SHA       string
	Author    *Actor
	Committer *Actor
	Parents   []string
	Signature string
}

// ObjectMetadata is the immutable header of a commit object.
type ObjectMetadata struct {
	sha       string
	author    *Actor
	committer *Actor
	parents   []string
	signature string
}

func NewObjectMetadata(p ObjectMetadataParams) (*ObjectMetadata, error) {
	v := newValidator("ObjectMetadata")

	sha, err := NormalizeSHA(p.SHA)
	v.field("sha", err)

	if p.Author == nil {
		v.field("author", ErrMissing)
	}
	if p.Committer == nil {
		v.field("committer", ErrMissing)
	}

	parents := make([]string, 0, len(p.Parents))
	for i, parent := range p.Parents {
		parent, err = NormalizeSHA(parent)
		if err != nil {
			v.field(fmt.Sprintf("parents[%v]", i), err)
			continue
		}
		parents = append(parents, parent)
	}

	signature, err := normalizeSignature(p.Signature)
	v.field("signature", err)

	if v.failed() {
		return nil, v.err()
	}

	return &ObjectMetadata{
		sha:       sha,
		author:    p.Author,
		committer: p.Committer,
		parents:   parents,
		signature: signature,
	}, nil
}

func (m *ObjectMetadata) SHA() string {
	return m.sha
}

func (m *ObjectMetadata) ShortSHA(length int) string {
	return shorten(m.sha, length)
}

func (m *ObjectMetadata) Author() *Actor {
	return m.author
}

func (m *ObjectMetadata) Committer() *Actor {
	return m.committer
}

func (m *ObjectMetadata) Parents() []string {
	return append([]string(nil), m.parents...)
}

func (m *ObjectMetadata) ParentCount() int {
	return len(m.parents)
}

func (m *ObjectMetadata) Signature() (string, bool) {
	return m.signature, m.signature != ""
}

func (m *ObjectMetadata) IsSigned() bool {
	return m.signature != ""
}

func (m *ObjectMetadata) SignatureKind() SignatureKind {
	switch {
	case m.signature == "":
		return SignatureNone
	case strings.HasPrefix(m.signature, "gpgsig "):
		return SignatureGPGSig
	case strings.HasPrefix(m.signature, "-----BEGIN PGP"):
		return SignaturePGP
	case strings.HasPrefix(m.signature, "-----BEGIN SSH"):
		return SignatureSSH
	case strings.HasPrefix(m.signature, "-----BEGIN SIGNED MESSAGE"), strings.HasPrefix(m.signature, "-----BEGIN CERTIFICATE"):
		return SignatureX509
	default:
		return SignatureUnknown
	}
}

func (m *ObjectMetadata) IsMergeCommit() bool {
	return len(m.parents) > 1
}

func (m *ObjectMetadata) IsRootCommit() bool {
	return len(m.parents) == 0
}

func (m *ObjectMetadata) String() string {
	var parents string
	switch len(m.parents) {
	case 0:
		parents = "root"
	case 1:
		parents = "parent: " + shorten(m.parents[0], 8)
	default:
		parents = fmt.Sprintf("%v parents", len(m.parents))
	}

	signed := ""
	if m.IsSigned() {
		signed = " [signed]"
	}

	return fmt.Sprintf("%v (%v)%v", m.ShortSHA(8), parents, signed)
}

func (m *ObjectMetadata) GoString() string {
	parents := lo.Map(m.parents, func(p string, _ int) string { return fmt.Sprintf("%q", p) })

	signature := "None"
	if m.IsSigned() {
		signature = fmt.Sprintf("%q", shorten(m.signature, 20)+"...")
	}

	return fmt.Sprintf("ObjectMetadata(sha=%q, author=%#v, committer=%#v, parents=[%v], signature=%v)",
		m.sha, m.author, m.committer, strings.Join(parents, ", "), signature)
}
