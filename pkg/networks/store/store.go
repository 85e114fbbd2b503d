package store

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/errors"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/logger"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/networks/types"
)

const fileExt = ".yaml"

// Store keeps one YAML document per network under <dataDir>/networks
type Store struct {
	dir    string
	logger *logger.Logger
}

// New creates the networks directory if needed
func New(dataDir string, logger *logger.Logger) (*Store, error) {
	dir := filepath.Join(dataDir, "networks")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.NewPersistenceError("failed to create networks directory", err, map[string]interface{}{
			"dir": dir,
		})
	}
	return &Store{dir: dir, logger: logger.Named("store")}, nil
}

// Dir returns the directory holding network files
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(id uuid.UUID) string {
	return filepath.Join(s.dir, id.String()+fileExt)
}

// Save writes the full network record, replacing any previous version
func (s *Store) Save(network *types.Network) error {
	data, err := yaml.Marshal(network)
	if err != nil {
		return errors.NewPersistenceError("failed to encode network", err, map[string]interface{}{
			"network": network.Name,
		})
	}

	path := s.path(network.ID)
	tmp, err := os.CreateTemp(s.dir, "."+network.ID.String()+"-*.tmp")
	if err != nil {
		return errors.NewPersistenceError("failed to write network file", err, map[string]interface{}{"path": path})
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.NewPersistenceError("failed to write network file", err, map[string]interface{}{"path": path})
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.NewPersistenceError("failed to write network file", err, map[string]interface{}{"path": path})
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.NewPersistenceError("failed to replace network file", err, map[string]interface{}{"path": path})
	}

	s.logger.Debug("Saved network", "network", network.Name, "path", path)
	return nil
}

// Delete removes a network's file. A missing file is not an error.
func (s *Store) Delete(id uuid.UUID) error {
	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return errors.NewPersistenceError("failed to delete network file", err, map[string]interface{}{
			"id": id.String(),
		})
	}
	return nil
}

// Load reads a single network by ID
func (s *Store) Load(id uuid.UUID) (*types.Network, error) {
	path := s.path(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("network file not found", map[string]interface{}{"id": id.String()})
		}
		return nil, errors.NewPersistenceError("failed to read network file", err, map[string]interface{}{"path": path})
	}
	return decode(path, data)
}

// LoadAll reads every network file sorted by creation time. Unreadable or
// malformed files are logged and skipped.
func (s *Store) LoadAll() ([]*types.Network, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.NewPersistenceError("failed to list networks directory", err, map[string]interface{}{
			"dir": s.dir,
		})
	}

	var networks []*types.Network
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("Skipping unreadable network file", "path", path, "error", err)
			continue
		}
		network, err := decode(path, data)
		if err != nil {
			s.logger.Warn("Skipping malformed network file", "path", path, "error", err)
			continue
		}
		networks = append(networks, network)
	}

	sort.Slice(networks, func(i, j int) bool {
		return networks[i].CreatedAt.Before(networks[j].CreatedAt)
	})
	return networks, nil
}

func decode(path string, data []byte) (*types.Network, error) {
	var network types.Network
	if err := yaml.Unmarshal(data, &network); err != nil {
		return nil, errors.NewPersistenceError("failed to decode network file", err, map[string]interface{}{"path": path})
	}
	if network.ID == uuid.Nil || network.Name == "" {
		return nil, errors.NewPersistenceError("network file is missing id or name", nil, map[string]interface{}{"path": path})
	}
	if len(network.Nodes) == 0 {
		network.Nodes = nil
	}
	if network.Ports == nil {
		network.Ports = make(map[uuid.UUID]types.PortConfig)
	}
	return &network, nil
}
