package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/panekit/internal/log"
)

// SaveRoots replaces the roots list in the config file. Comments and every
// other key are preserved by editing the yaml.Node tree.
func SaveRoots(configPath string, roots []string) error {
	data, err := os.ReadFile(configPath) //nolint:gosec // G304: config path chosen by the user
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	rootsNode := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, r := range roots {
		rootsNode.Content = append(rootsNode.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r})
	}
	if err := setKey(&doc, "roots", rootsNode); err != nil {
		return err
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	if err := writeAtomic(configPath, buf.Bytes()); err != nil {
		return err
	}
	log.Info(log.CatConfig, "saved roots", "path", configPath, "count", len(roots))
	return nil
}

// AddRoot appends dir to the roots in the config file unless it is already
// listed. It reports whether the file changed.
func AddRoot(configPath string, current []string, dir string) (bool, error) {
	if slices.Contains(current, dir) {
		return false, nil
	}
	next := append(slices.Clone(current), dir)
	if err := SaveRoots(configPath, next); err != nil {
		return false, err
	}
	return true, nil
}

// setKey replaces key's value in the document's top-level mapping, adding the
// key when missing. An empty document becomes a one-key mapping.
func setKey(doc *yaml.Node, key string, value *yaml.Node) error {
	if doc.Kind == 0 {
		*doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("config: top level must be a mapping")
	}

	root := doc.Content[0]
	for i := 0; i < len(root.Content)-1; i += 2 {
		if root.Content[i].Value == key {
			// Keep comments attached to the old value.
			value.LineComment = root.Content[i+1].LineComment
			root.Content[i+1] = value
			return nil
		}
	}
	root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, value)
	return nil
}

// writeAtomic writes to a temp file in the same directory, then renames it.
func writeAtomic(configPath string, data []byte) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".panekit.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tempPath, configPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
