package explorer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sightglass-mcp/sightglass/internal/domain"
)

// BufferListResult lists session buffers.
type BufferListResult struct {
	Buffers []domain.BufferInfo `json:"buffers"`
	Count   int                 `json:"count"`
}

// BufferList returns metadata for every buffer in the session.
func (s *Service) BufferList(instance string) (BufferListResult, error) {
	sess, handle, err := s.open(instance)
	if err != nil {
		return BufferListResult{}, err
	}
	defer handle.Release()
	buffers := sess.Buffers()
	return BufferListResult{Buffers: buffers, Count: len(buffers)}, nil
}

// BufferCreate stores caller-supplied content under name.
func (s *Service) BufferCreate(instance, name, content, description string) (domain.BufferInfo, error) {
	sess, handle, err := s.open(instance)
	if err != nil {
		return domain.BufferInfo{}, err
	}
	defer handle.Release()
	info, err := sess.CreateBuffer(name, content, domain.Provenance{
		Type:        domain.ProvenanceComputed,
		Description: description,
	})
	if err != nil {
		return domain.BufferInfo{}, err
	}
	sess.Record("buffer_create", name, info.Preview)
	return info, nil
}

// BufferFromFile loads a whole file (or a line window) into a buffer.
func (s *Service) BufferFromFile(instance, name, file string, startLine, endLine int) (domain.BufferInfo, error) {
	sess, handle, err := s.open(instance)
	if err != nil {
		return domain.BufferInfo{}, err
	}
	defer handle.Release()

	content, err := handle.Project().Index.Content(file)
	if err != nil {
		return domain.BufferInfo{}, err
	}
	text := string(content)
	if startLine > 0 || endLine > 0 {
		lines := strings.Split(text, "\n")
		if startLine <= 0 {
			startLine = 1
		}
		if endLine <= 0 || endLine > len(lines) {
			endLine = len(lines)
		}
		if startLine > endLine {
			return domain.BufferInfo{}, domain.InvalidInputf("line window %d..%d is empty", startLine, endLine)
		}
		text = strings.Join(lines[startLine-1:endLine], "\n")
	}
	if name == "" {
		name = "file_" + sanitizeName(file)
	}
	info, err := sess.CreateBuffer(name, text, domain.Provenance{
		Type:      domain.ProvenanceFile,
		Path:      file,
		StartLine: startLine,
		EndLine:   endLine,
	})
	if err != nil {
		return domain.BufferInfo{}, err
	}
	sess.Record("buffer_from_file", file, info.Preview)
	return info, nil
}

// BufferFromSymbol loads a symbol's definition into a buffer.
func (s *Service) BufferFromSymbol(instance, name, file, symbol string) (domain.BufferInfo, error) {
	sess, handle, err := s.open(instance)
	if err != nil {
		return domain.BufferInfo{}, err
	}
	defer handle.Release()

	sym, text, err := handle.Project().Index.Impl(file, symbol)
	if err != nil {
		return domain.BufferInfo{}, err
	}
	if name == "" {
		name = "impl_" + symbol
	}
	info, err := sess.CreateBuffer(name, text, domain.Provenance{
		Type:      domain.ProvenanceSymbol,
		Path:      sym.File,
		Symbol:    sym.Name,
		StartLine: sym.StartLine,
		EndLine:   sym.EndLine,
	})
	if err != nil {
		return domain.BufferInfo{}, err
	}
	sess.Record("buffer_from_symbol", file+"::"+symbol, info.Preview)
	return info, nil
}

// BufferInfo returns a buffer's metadata without its content.
func (s *Service) BufferInfo(instance, name string) (domain.BufferInfo, error) {
	sess, handle, err := s.open(instance)
	if err != nil {
		return domain.BufferInfo{}, err
	}
	defer handle.Release()
	buf, err := sess.Buffer(name)
	if err != nil {
		return domain.BufferInfo{}, err
	}
	return buf.Info(), nil
}

// BufferPeekResult is a bounded slice of raw buffer content. This is the
// one deliberate escape hatch through the metadata gate, capped at
// BufferPeekMaxBytes per call.
type BufferPeekResult struct {
	Name      string `json:"name"`
	Offset    int    `json:"offset"`
	Content   string `json:"content"`
	SizeBytes int    `json:"size_bytes"`
	Remaining int    `json:"remaining_bytes"`
}

// BufferPeek returns up to length bytes of a buffer starting at offset.
func (s *Service) BufferPeek(instance, name string, offset, length int) (BufferPeekResult, error) {
	sess, handle, err := s.open(instance)
	if err != nil {
		return BufferPeekResult{}, err
	}
	defer handle.Release()

	buf, err := sess.Buffer(name)
	if err != nil {
		return BufferPeekResult{}, err
	}
	if offset < 0 || offset > len(buf.Content) {
		return BufferPeekResult{}, domain.InvalidInputf("offset %d outside buffer of %d bytes", offset, len(buf.Content))
	}
	if length <= 0 || length > s.limits.BufferPeekMaxBytes {
		length = s.limits.BufferPeekMaxBytes
	}
	end := min(offset+length, len(buf.Content))
	sess.Record("buffer_peek", name, fmt.Sprintf("bytes %d..%d", offset, end))
	return BufferPeekResult{
		Name:      name,
		Offset:    offset,
		Content:   buf.Content[offset:end],
		SizeBytes: len(buf.Content),
		Remaining: len(buf.Content) - end,
	}, nil
}

// BufferDelete removes a buffer.
func (s *Service) BufferDelete(instance, name string) error {
	sess, handle, err := s.open(instance)
	if err != nil {
		return err
	}
	defer handle.Release()
	if err := sess.DeleteBuffer(name); err != nil {
		return err
	}
	sess.Record("buffer_delete", name, "")
	return nil
}

// VarEntry is one variable with a preview of its value.
type VarEntry struct {
	Name      string `json:"name"`
	Preview   string `json:"preview"`
	SizeBytes int    `json:"size_bytes"`
}

// VarListResult lists session variables.
type VarListResult struct {
	Variables []VarEntry `json:"variables"`
	FinalSet  bool       `json:"final_set"`
}

// VarList lists the session's scratch variables.
func (s *Service) VarList(instance string) (VarListResult, error) {
	sess, handle, err := s.open(instance)
	if err != nil {
		return VarListResult{}, err
	}
	defer handle.Release()

	vars := sess.Vars()
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	entries := make([]VarEntry, len(names))
	for i, name := range names {
		entries[i] = VarEntry{Name: name, Preview: domain.Preview(vars[name]), SizeBytes: len(vars[name])}
	}
	_, finalSet := sess.Final()
	return VarListResult{Variables: entries, FinalSet: finalSet}, nil
}

// VarSet stores a variable. Setting "Final" fills the final-result slot.
func (s *Service) VarSet(instance, name, value string) error {
	sess, handle, err := s.open(instance)
	if err != nil {
		return err
	}
	defer handle.Release()
	if err := sess.SetVar(name, value); err != nil {
		return err
	}
	sess.Record("var_set", name, domain.Preview(value))
	return nil
}

// VarGet reads a variable's full value.
func (s *Service) VarGet(instance, name string) (string, error) {
	sess, handle, err := s.open(instance)
	if err != nil {
		return "", err
	}
	defer handle.Release()
	value, ok := sess.GetVar(name)
	if !ok {
		return "", domain.NotFoundf("variable %q", name)
	}
	return value, nil
}

// VarDelete removes a variable.
func (s *Service) VarDelete(instance, name string) error {
	sess, handle, err := s.open(instance)
	if err != nil {
		return err
	}
	defer handle.Release()
	return sess.DeleteVar(name)
}
