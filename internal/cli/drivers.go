package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shinji-kodama/merlin/internal/config"
	"github.com/shinji-kodama/merlin/internal/model"
	"github.com/shinji-kodama/merlin/internal/source"
	"github.com/shinji-kodama/merlin/internal/source/excelsource"
	"github.com/shinji-kodama/merlin/internal/source/jsonsource"
	"github.com/shinji-kodama/merlin/internal/source/yamlsource"
)

// driverFactory builds a source driver configured from settings.
type driverFactory func(s *config.Settings) source.Driver

func newYAMLDriver(s *config.Settings) source.Driver {
	return yamlsource.NewDriver(yamlsource.WithIndent(s.YAML.Indent))
}

func newExcelDriver(s *config.Settings) source.Driver {
	return excelsource.NewDriver(excelsource.WithSheetName(s.Excel.SheetName))
}

func newJSONDriver(s *config.Settings) source.Driver {
	return jsonsource.NewDriver(jsonsource.WithIndent(s.JSON.Indent))
}

// drivers maps lower-case file extensions to driver factories.
var drivers = map[string]driverFactory{
	".yml":  newYAMLDriver,
	".yaml": newYAMLDriver,
	".xml":  newExcelDriver,
	".json": newJSONDriver,
}

// driverFor selects the driver handling path by its extension.
func driverFor(path string, s *config.Settings) (source.Driver, error) {
	ext := strings.ToLower(filepath.Ext(path))
	factory, ok := drivers[ext]
	if !ok {
		return nil, model.NewCLIError(model.ExitUnknownFormat, "Unknown file extension. Cannot create a source driver.")
	}
	return factory(s), nil
}

// readConfiguration reads the configuration set stored at path.
func readConfiguration(path string, s *config.Settings) (*model.ConfigurationSet, error) {
	d, err := driverFor(path, s)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitFileError, fmt.Sprintf("failed to open %s", path), err)
	}
	defer func() { _ = f.Close() }()

	logger.Debug("reading configuration", "path", path, "driver", fmt.Sprintf("%T", d))
	cs, err := d.Read(f)
	if err != nil {
		return nil, toCLIError(err)
	}
	logger.Debug("configuration read",
		"environments", len(cs.Environments()), "parameters", len(cs.Parameters()))
	return cs, nil
}
