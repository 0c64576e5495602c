// Package linetable extracts statement-granular source line information
// from the DWARF debug sections of an ELF executable, producing the
// (source path, line number) -> instruction address mapping the
// collector seeds its breakpoints from.
package linetable

import (
	"debug/dwarf"
	"debug/elf"
	"errors"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/tsirakis/bcov/internal/xerrors"
)

// LineEntry is one statement-start row of a compilation unit's line table.
type LineEntry struct {
	Line    int
	Address uintptr
}

// ReadLines opens executable and walks every compilation unit's line
// table, returning a map from normalized source path to the statement-
// start (line, address) pairs found for it.
//
// An executable with no debug info is not an error: the returned map is
// simply empty and coverage for it will be zero. A failure to open the
// file, initialize the DWARF reader, or walk the compilation units
// aborts extraction. A failure to obtain one compilation unit's line
// table is logged and that CU is skipped. A DWARF error on a line-table
// row is logged and the remaining rows of that CU are not read; rows
// already read from it are kept.
func ReadLines(executable string, log logrus.FieldLogger) (map[string][]LineEntry, error) {
	if log == nil {
		log = logrus.New()
	}

	f, err := os.Open(executable)
	if err != nil {
		return nil, xerrors.Errorf("debug info unreadable: %w", err)
	}
	defer f.Close()

	elfFile, err := elf.NewFile(f)
	if err != nil {
		return nil, xerrors.Errorf("debug info unreadable: %w", err)
	}
	defer elfFile.Close()

	dwarfData, err := elfFile.DWARF()
	if err != nil {
		if elfFile.Section(".debug_info") == nil && elfFile.Section(".zdebug_info") == nil {
			// No debug info at all: empty result, not an error, per
			// spec.md §4.2 step 1.
			log.WithError(err).Debug("no debug information in executable")
			return map[string][]LineEntry{}, nil
		}
		return nil, xerrors.Errorf("debug info unreadable: %w", err)
	}

	result := make(map[string][]LineEntry)
	reader := dwarfData.Reader()

	for {
		cu, err := reader.Next()
		if err != nil {
			return nil, xerrors.Errorf("debug info unreadable: %w", err)
		}
		if cu == nil {
			break
		}
		if cu.Tag != dwarf.TagCompileUnit {
			reader.SkipChildren()
			continue
		}

		if err := readCU(dwarfData, cu, result, log); err != nil {
			log.WithError(err).Warn("skipping compilation unit with unreadable line table")
		}
		reader.SkipChildren()
	}

	return result, nil
}

func readCU(dwarfData *dwarf.Data, cu *dwarf.Entry, result map[string][]LineEntry, log logrus.FieldLogger) error {
	lineReader, err := dwarfData.LineReader(cu)
	if err != nil {
		return xerrors.Wrap(err)
	}
	if lineReader == nil {
		// Compilation unit carries no line table at all.
		return nil
	}

	var entry dwarf.LineEntry
	for {
		err := lineReader.Next(&entry)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.WithError(err).Debug("stopping at unreadable line table row")
			}
			break
		}

		// End-of-sequence rows are table bookkeeping, not source
		// statements; a CU's line table may contain several sequences.
		if entry.EndSequence {
			continue
		}

		if entry.Line <= 0 || !entry.IsStmt {
			continue
		}

		path := Normalize(entry.File.Name)
		result[path] = append(result[path], LineEntry{
			Line:    entry.Line,
			Address: uintptr(entry.Address),
		})
	}

	return nil
}
