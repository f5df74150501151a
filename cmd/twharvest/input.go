package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"twharvest/pkg/handle"
)

// referenceFile is the --input format. Either a bare list or a mapping with
// an accounts key is accepted; JSON works as well since it is valid YAML.
type referenceFile struct {
	Accounts []any `yaml:"accounts"`
}

// readReferences loads account references from path
func readReferences(path string) ([]handle.Reference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return parseReferences(data)
}

func parseReferences(data []byte) ([]handle.Reference, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse input file: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	var values []any
	switch node.Content[0].Kind {
	case yaml.SequenceNode:
		if err := node.Content[0].Decode(&values); err != nil {
			return nil, fmt.Errorf("failed to decode account list: %w", err)
		}
	case yaml.MappingNode:
		var file referenceFile
		if err := node.Content[0].Decode(&file); err != nil {
			return nil, fmt.Errorf("failed to decode account list: %w", err)
		}
		values = file.Accounts
	default:
		return nil, fmt.Errorf("input must be a list of accounts or a mapping with an accounts key")
	}

	refs := make([]handle.Reference, 0, len(values))
	for i, v := range values {
		ref, err := handle.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", i+1, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// argReferences turns positional arguments into references. Arguments are
// always strings, so arguments in canonical decimal form name numeric
// accounts. Anything else, "007" or "+7" included, stays text so the term
// is kept exactly as typed.
func argReferences(args []string) []handle.Reference {
	refs := make([]handle.Reference, 0, len(args))
	for _, a := range args {
		if id, err := strconv.ParseInt(a, 10, 64); err == nil && strconv.FormatInt(id, 10) == a {
			refs = append(refs, handle.ID(id))
			continue
		}
		refs = append(refs, handle.Text(a))
	}
	return refs
}
