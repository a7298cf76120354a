package config

import "github.com/spf13/afero"

// fs is used for reading and writing config files, and for checking the
// configured paths. Tests replace it with afero.NewMemMapFs().
var fs = afero.NewOsFs()
