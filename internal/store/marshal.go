package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/docket/internal/ir"
)

// marshalGraph stores a fact stream as JSON TEXT. encoding/json emits
// struct fields in declaration order, so equal graphs store equal text.
func marshalGraph(g ir.PackageGraph) (string, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("marshal graph: %w", err)
	}
	return string(data), nil
}

func unmarshalGraph(data string) (ir.PackageGraph, error) {
	var g ir.PackageGraph
	if err := json.Unmarshal([]byte(data), &g); err != nil {
		return ir.PackageGraph{}, fmt.Errorf("unmarshal graph: %w", err)
	}
	return g, nil
}

// marshalEra stores an era request as RFC 8785 canonical JSON.
func marshalEra(era map[string]string) (string, error) {
	obj := make(ir.Object, len(era))
	for k, v := range era {
		obj[k] = ir.String(v)
	}
	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("marshal era: %w", err)
	}
	return string(data), nil
}

func unmarshalEra(data string) (map[string]string, error) {
	era := map[string]string{}
	if data == "" || data == "{}" {
		return era, nil
	}
	if err := json.Unmarshal([]byte(data), &era); err != nil {
		return nil, fmt.Errorf("unmarshal era: %w", err)
	}
	return era, nil
}

func marshalCandidates(candidates []string) (string, error) {
	if candidates == nil {
		candidates = []string{}
	}
	data, err := ir.MarshalCanonical(ir.Strings(candidates))
	if err != nil {
		return "", fmt.Errorf("marshal candidates: %w", err)
	}
	return string(data), nil
}

func unmarshalCandidates(data string) ([]string, error) {
	var candidates []string
	if err := json.Unmarshal([]byte(data), &candidates); err != nil {
		return nil, fmt.Errorf("unmarshal candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return candidates, nil
}
