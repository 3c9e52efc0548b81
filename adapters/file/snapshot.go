package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"isp-billing/core/snapshot"
	"isp-billing/core/types"
	"isp-billing/internal/errors"
	"isp-billing/internal/logging"
)

// SnapshotProvider reads connection snapshots from a JSON or YAML file
type SnapshotProvider struct {
	path string
	log  *zap.Logger
}

// NewSnapshotProvider creates a file snapshot provider
func NewSnapshotProvider(path string) *SnapshotProvider {
	return &SnapshotProvider{
		path: path,
		log:  logging.Named("snapshot.file"),
	}
}

// snapshotDocument is the file layout. A file holds either one owner's
// snapshots or snapshots keyed by owner ID.
type snapshotDocument struct {
	Snapshots []snapshot.RawSnapshot            `json:"snapshots" yaml:"snapshots"`
	Owners    map[string][]snapshot.RawSnapshot `json:"owners" yaml:"owners"`
}

// Snapshots returns the owner's snapshots. A file without an owners
// section serves the same snapshots to every owner.
func (p *SnapshotProvider) Snapshots(ctx context.Context, ownerID string) ([]types.ConnectionSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, errors.Provider(fmt.Sprintf("failed to read snapshots %s", p.path), err)
	}

	snaps, err := DecodeSnapshots(data, p.path, ownerID)
	if err != nil {
		return nil, err
	}

	p.log.Debug("loaded connection snapshots", zap.String("path", p.path), zap.String("owner", ownerID), zap.Int("isps", len(snaps)))
	return snaps, nil
}

// DecodeSnapshots decodes snapshot bytes. The document is either a bare
// list of snapshots, {"snapshots": [...]}, or {"owners": {id: [...]}}.
func DecodeSnapshots(data []byte, filename, ownerID string) ([]types.ConnectionSnapshot, error) {
	var (
		raws []snapshot.RawSnapshot
		doc  snapshotDocument
		list bool
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".json":
		trimmed := bytes.TrimSpace(data)
		list = len(trimmed) > 0 && trimmed[0] == '['
		if list {
			err = json.Unmarshal(trimmed, &raws)
		} else if len(trimmed) > 0 {
			err = json.Unmarshal(trimmed, &doc)
		}
	case ".yaml", ".yml":
		var root yaml.Node
		if err = yaml.Unmarshal(data, &root); err == nil && len(root.Content) > 0 {
			list = root.Content[0].Kind == yaml.SequenceNode
			if list {
				err = root.Decode(&raws)
			} else {
				err = root.Decode(&doc)
			}
		}
	default:
		return nil, errors.Newf(errors.TypeInput, "unsupported snapshot format %q (want .json, .yaml or .yml)", ext)
	}
	if err != nil {
		return nil, errors.Parsing("invalid snapshot file "+filename, err)
	}

	if !list {
		raws = doc.Snapshots
		if doc.Owners != nil {
			owned, ok := doc.Owners[ownerID]
			if !ok {
				return nil, errors.NotFound("owner", ownerID)
			}
			raws = owned
		}
	}
	return snapshot.NormalizeAll(raws)
}
