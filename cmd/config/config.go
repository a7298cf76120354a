package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/andrefdof/syncfiler/cmd/util"
	"github.com/andrefdof/syncfiler/pkg/config"
	"github.com/andrefdof/syncfiler/pkg/errors"
	"github.com/andrefdof/syncfiler/pkg/sync"
)

// Mocked for unit testing.
var (
	stdout              io.Writer = os.Stdout
	stdin               io.Reader = os.Stdin
	parseConfig                   = config.Parse
	writeConfig                   = config.Write
	stat                          = os.Stat
	getWorkingDirectory           = os.Getwd
)

// cliOptions are the fields that can be set with flags rather than prompts.
type cliOptions struct {
	configPath string
	source     string
	replica    string
	interval   string
	logPath    string
}

// New creates a new `config` command.
func New() *cobra.Command {
	var cliOpts cliOptions
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or update the syncfiler configuration file",
		Run: func(_ *cobra.Command, _ []string) {
			if err := SetupConfig(cliOpts); err != nil {
				err = errors.NewFriendlyError("Failed to setup configuration:\n%s", err)
				util.HandleFatalError(err)
			}
		},
	}
	cmd.PersistentFlags().StringVar(&cliOpts.configPath, "config", config.DefaultPath,
		"The path of the config file.")
	cmd.Flags().StringVarP(&cliOpts.source, "source", "a", "",
		"Set the source directory in the config. "+
			"Optional: If not set, `syncfiler config` will interactively prompt.")
	cmd.Flags().StringVarP(&cliOpts.replica, "replica", "b", "",
		"Set the replica directory in the config. "+
			"Optional: If not set, `syncfiler config` will interactively prompt.")
	cmd.Flags().StringVarP(&cliOpts.interval, "interval", "c", "",
		"Set the sync interval in the config. "+
			"Optional: If not set, `syncfiler config` will interactively prompt.")
	cmd.Flags().StringVarP(&cliOpts.logPath, "log", "d", "",
		"Set the log file in the config.")

	// Setup the commands for querying the contents of the config.
	type getterSpec struct {
		use, short string
		fn         func(config.Sync) string
	}

	getters := []getterSpec{
		{
			use:   "get-source",
			short: "Get the currently configured source directory",
			fn:    func(cfg config.Sync) string { return cfg.Source },
		},
		{
			use:   "get-replica",
			short: "Get the currently configured replica directory",
			fn:    func(cfg config.Sync) string { return cfg.Replica },
		},
		{
			use:   "get-interval",
			short: "Get the currently configured sync interval",
			fn:    func(cfg config.Sync) string { return time.Duration(cfg.Interval).String() },
		},
	}
	for _, getter := range getters {
		getter := getter
		cmd.AddCommand(&cobra.Command{
			Use:   getter.use,
			Short: getter.short,
			Run: func(_ *cobra.Command, _ []string) {
				cfg, err := parseConfig(cliOpts.configPath)
				if err != nil {
					err = errors.WithContext(err, "read config")
					util.HandleFatalError(err)
				}

				fmt.Fprintln(stdout, getter.fn(cfg))
			},
		})
	}

	return cmd
}

// SetupConfig prompts for any fields that weren't set in cliOpts, and writes
// the resulting config.
func SetupConfig(cliOpts cliOptions) error {
	cfg, err := generateConfig(cliOpts)
	if err != nil {
		return errors.WithContext(err, "generate config")
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := writeConfig(cliOpts.configPath, cfg); err != nil {
		return errors.WithContext(err, "write config")
	}

	path, err := config.GetConfigPath(cliOpts.configPath)
	if err != nil {
		return errors.WithContext(err, "get config path")
	}

	fmt.Fprintf(stdout, "Wrote config to %s\n", path)
	return nil
}

func directoryValidationFn(path string) (string, bool) {
	info, err := stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Sprintf("%q doesn't exist. Please create it, "+
				"or pick another directory.", path), false
		}
		return fmt.Sprintf("Failed to check %q: %s", path, err), false
	}

	if !info.IsDir() {
		return fmt.Sprintf("%q is not a directory. "+
			"Please pick another directory.", path), false
	}
	return "", true
}

func intervalValidationFn(str string) (string, bool) {
	interval, err := config.ParseDuration(str)
	if err != nil {
		return fmt.Sprintf("%s. Please enter another interval.", err), false
	}

	if interval <= sync.MinInterval {
		return fmt.Sprintf("The interval must be longer than %s. "+
			"Please enter another interval.", sync.MinInterval), false
	}
	return "", true
}

type prompt struct {
	helpString, prompt, defaultAnswer, currAnswer string
	field                                         *string
	validationFn                                  func(string) (string, bool)
}

// generateConfig interacts with the user to decide what the user's desired
// configuration is. Fields that the user doesn't set keep their values from
// the current config, if there is one.
func generateConfig(cliOpts cliOptions) (config.Sync, error) {
	cfg, err := parseConfig(cliOpts.configPath)
	if err != nil {
		cfg = config.Default()
		log.WithError(err).Debug("Failed to read current config")
	}
	currConfig := cfg

	cwd, err := getWorkingDirectory()
	if err != nil {
		return config.Sync{}, errors.WithContext(err, "get working directory")
	}

	// Relative paths are entered relative to the working directory.
	validateDir := func(path string) (string, bool) {
		resolved, err := config.ResolvePath(cwd, path)
		if err != nil {
			return err.Error(), false
		}
		return directoryValidationFn(resolved)
	}

	source := cliOpts.source
	replica := cliOpts.replica
	interval := cliOpts.interval

	var prompts []prompt
	if source == "" {
		prompts = append(prompts, prompt{
			helpString: "Enter the directory to mirror.\n" +
				"Only the files directly inside it are synced.",
			prompt:        "Source directory",
			defaultAnswer: cwd,
			currAnswer:    currConfig.Source,
			field:         &source,
			validationFn:  validateDir,
		})
	}

	if replica == "" {
		prompts = append(prompts, prompt{
			helpString: "Enter the directory to mirror into.\n" +
				"Files in it that aren't in the source directory will be deleted.",
			prompt:       "Replica directory",
			currAnswer:   currConfig.Replica,
			field:        &replica,
			validationFn: validateDir,
		})
	}

	if interval == "" {
		prompts = append(prompts, prompt{
			helpString: "Enter how long to wait between syncs, " +
				"e.g. `30s`, `5m` or `01:30:00`.",
			prompt:        "Sync interval",
			defaultAnswer: time.Duration(config.Default().Interval).String(),
			currAnswer:    time.Duration(currConfig.Interval).String(),
			field:         &interval,
			validationFn:  intervalValidationFn,
		})
	}

	for _, prompt := range prompts {
		var resp string
		for {
			resp, err = promptUser(prompt.helpString, prompt.prompt,
				prompt.defaultAnswer, prompt.currAnswer)
			if err != nil {
				return config.Sync{}, errors.WithContext(err, "read response")
			}

			if prompt.validationFn == nil {
				break
			}

			validationErr, ok := prompt.validationFn(resp)
			if ok {
				break
			}

			fmt.Fprintln(stdout, validationErr)
		}

		*prompt.field = resp
	}

	paths := []struct {
		value string
		field *string
	}{
		{source, &cfg.Source},
		{replica, &cfg.Replica},
		{cliOpts.logPath, &cfg.LogPath},
	}
	for _, path := range paths {
		if path.value == "" {
			continue
		}

		resolved, err := config.ResolvePath(cwd, path.value)
		if err != nil {
			return config.Sync{}, errors.WithContext(err, "resolve path")
		}
		*path.field = resolved
	}

	parsedInterval, err := config.ParseDuration(interval)
	if err != nil {
		return config.Sync{}, errors.WithContext(err, "parse interval")
	}
	cfg.Interval = config.Duration(parsedInterval)

	return cfg, nil
}

func promptUser(helpString, prompt, defaultAnswer, currAnswer string) (string, error) {
	// Display a new line at the end to separate different fields to make it
	// look clearer.
	defer fmt.Fprintln(stdout)

	options := []string{}
	if defaultAnswer != "" {
		options = append(options, defaultAnswer)
	}
	if currAnswer != "" && currAnswer != defaultAnswer {
		options = append(options, currAnswer)
	}
	options = append(options, "(Enter manually)")

	fmt.Fprintln(stdout, helpString+"\n"+prompt+":")

	stdinReader := bufio.NewReader(stdin)

	if nOptions := len(options); nOptions > 1 {
		// defaultAnswer or currAnswer exists.
		fmt.Fprintln(stdout)
		for i, option := range options {
			if i == 0 {
				option = fmt.Sprintf("%s (recommended)", option)
			}
			fmt.Fprintf(stdout, "\t%d. %s\n", i+1, option)
		}
		fmt.Fprintln(stdout)

		for {
			fmt.Fprintf(stdout, "Please choose one [1-%d]: ", nOptions)
			choiceStr, err := stdinReader.ReadString('\n')
			if err != nil {
				return "", err
			}

			var choice int
			choiceStr = strings.TrimRight(choiceStr, "\n")

			// Default to the first choice if user doesn't enter anything.
			if choiceStr == "" {
				choice = 1
			} else {
				choice, err = strconv.Atoi(choiceStr)
				if err != nil || choice < 1 || choice > nOptions {
					// Try again if the input is invalid.
					continue
				}
			}

			if choice == nOptions {
				// Enter manually.
				break
			}

			return options[choice-1], nil
		}
	}

	fmt.Fprint(stdout, "Please enter manually: ")
	resp, err := stdinReader.ReadString('\n')
	if err != nil {
		return "", err
	}

	return strings.TrimRight(resp, "\n"), nil
}
