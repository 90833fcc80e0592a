package explorer

import (
	"github.com/sightglass-mcp/sightglass/internal/annotations"
)

// DefineFile attaches a first-time definition to a file.
func (s *Service) DefineFile(instance, file, text string) error {
	return s.annotate(instance, "define_file", file, func(a *annotations.Store) error {
		return a.DefineFile(file, text)
	})
}

// RedefineFile replaces a file definition.
func (s *Service) RedefineFile(instance, file, text string) error {
	return s.annotate(instance, "redefine_file", file, func(a *annotations.Store) error {
		return a.RedefineFile(file, text)
	})
}

// DefineSymbol attaches a first-time definition to a symbol.
func (s *Service) DefineSymbol(instance, file, symbol, text string) error {
	return s.annotate(instance, "define_symbol", file+"::"+symbol, func(a *annotations.Store) error {
		return a.DefineSymbol(file, symbol, text)
	})
}

// RedefineSymbol replaces a symbol definition.
func (s *Service) RedefineSymbol(instance, file, symbol, text string) error {
	return s.annotate(instance, "redefine_symbol", file+"::"+symbol, func(a *annotations.Store) error {
		return a.RedefineSymbol(file, symbol, text)
	})
}

// MarkFile records an exploration status for a file.
func (s *Service) MarkFile(instance, file, status, note string) error {
	return s.annotate(instance, "mark_file", file, func(a *annotations.Store) error {
		return a.MarkFile(file, status, note)
	})
}

func (s *Service) annotate(instance, op, target string, fn func(*annotations.Store) error) error {
	sess, handle, err := s.open(instance)
	if err != nil {
		return err
	}
	defer handle.Release()
	if err := fn(handle.Project().Annotations); err != nil {
		return err
	}
	sess.Record(op, target, "")
	return nil
}

// AnnotationsSummary reports what is annotated after a save or load.
type AnnotationsSummary struct {
	Files   int `json:"files"`
	Symbols int `json:"symbols"`
	Marked  int `json:"marked"`
}

// SaveAnnotations persists the project's annotations to disk.
func (s *Service) SaveAnnotations(instance string) (AnnotationsSummary, error) {
	sess, handle, err := s.open(instance)
	if err != nil {
		return AnnotationsSummary{}, err
	}
	defer handle.Release()
	ann := handle.Project().Annotations
	if err := ann.Save(); err != nil {
		return AnnotationsSummary{}, err
	}
	sess.Record("save_annotations", handle.Project().Root, "")
	return summarize(ann), nil
}

// LoadAnnotations reloads annotations from disk, replacing in-memory state.
func (s *Service) LoadAnnotations(instance string) (AnnotationsSummary, error) {
	sess, handle, err := s.open(instance)
	if err != nil {
		return AnnotationsSummary{}, err
	}
	defer handle.Release()
	ann := handle.Project().Annotations
	if err := ann.Load(); err != nil {
		return AnnotationsSummary{}, err
	}
	sess.Record("load_annotations", handle.Project().Root, "")
	return summarize(ann), nil
}

func summarize(a *annotations.Store) AnnotationsSummary {
	sum := a.Summarize()
	return AnnotationsSummary{
		Files:   len(sum.Files),
		Symbols: len(sum.Symbols),
		Marked:  len(sum.Marked),
	}
}
