package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Well-known instruction document names, resolved against the project root.
const (
	GenerationInstructionsFile = "test_generation_instructions.yaml"
	RefinementInstructionsFile = "test_refinement_instructions.yaml"
	DebuggingInstructionsFile  = "build_debugging_instructions.yaml"
)

// Instruction supplies the system message for one kind of service call.
type Instruction struct {
	Role string `yaml:"role"`
}

// instructionDocument is the on-disk shape: { instruction: { role: <string> } }.
type instructionDocument struct {
	Instruction *Instruction `yaml:"instruction"`
}

// InstructionSet holds the three instruction documents. It is loaded once at
// startup and treated as read-only for the rest of the run.
type InstructionSet struct {
	Generation Instruction
	Refinement Instruction
	Debugging  Instruction
}

// LoadInstructionSet reads the generation, refinement and debugging documents
// from projectRoot. Every failure is fatal to the run:
//   - ErrInstructionNotFound – a document is absent (errors.Is compatible)
//   - *ParseError            – a document is not valid YAML
//   - plain error            – the instruction.role field is missing or blank
func LoadInstructionSet(projectRoot string) (*InstructionSet, error) {
	var set InstructionSet
	docs := []struct {
		name string
		dst  *Instruction
	}{
		{GenerationInstructionsFile, &set.Generation},
		{RefinementInstructionsFile, &set.Refinement},
		{DebuggingInstructionsFile, &set.Debugging},
	}

	for _, doc := range docs {
		inst, err := loadInstruction(filepath.Join(projectRoot, doc.name))
		if err != nil {
			return nil, err
		}
		*doc.dst = *inst
	}
	return &set, nil
}

func loadInstruction(path string) (*Instruction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInstructionNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var doc instructionDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if doc.Instruction == nil || strings.TrimSpace(doc.Instruction.Role) == "" {
		return nil, fmt.Errorf("%s: instruction.role is missing or empty", path)
	}
	return doc.Instruction, nil
}
