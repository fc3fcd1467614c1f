package config

import (
	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mdbook-svg/pkg/errors"
)

// BookFile is the subset of book.toml the standalone commands read.
type BookFile struct {
	Src    string // source directory, relative to the book root
	Config Config // the [preprocessor.<name>] table
	Found  bool   // whether that table exists
}

type bookTOML struct {
	Book struct {
		Src string `toml:"src"`
	} `toml:"book"`
	Preprocessor map[string]toml.Primitive `toml:"preprocessor"`
}

// LoadBookTOML reads book.toml at path and decodes the table for name.
func LoadBookTOML(path, name string) (BookFile, error) {
	var raw bookTOML
	md, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return BookFile{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	bf := BookFile{Src: raw.Book.Src}
	if bf.Src == "" {
		bf.Src = "src"
	}
	prim, ok := raw.Preprocessor[name]
	if !ok {
		return bf, nil
	}
	if err := md.PrimitiveDecode(prim, &bf.Config); err != nil {
		return BookFile{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode [preprocessor.%s]", name)
	}
	bf.Found = true
	return bf, nil
}
