package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrefdof/syncfiler/pkg/config"
	"github.com/andrefdof/syncfiler/pkg/errors"
)

func TestPromptUser(t *testing.T) {
	tests := []struct {
		name                                                 string
		helpString, prompt, defaultAnswer, currAnswer, stdin string
		expPrompt, expResult                                 string
	}{
		{
			name:          "No default or current answer",
			helpString:    "explanation",
			prompt:        "prompt",
			defaultAnswer: "",
			currAnswer:    "",
			stdin:         "user input\n",
			expPrompt: "explanation\n" +
				"prompt:\n" +
				"Please enter manually: \n",
			expResult: "user input",
		},
		{
			name:          "No default answer only, chose current answer",
			helpString:    "different explanation",
			prompt:        "different prompt",
			defaultAnswer: "",
			currAnswer:    "current answer",
			stdin:         "1\n",
			expPrompt: "different explanation\n" +
				"different prompt:\n" +
				"\n" +
				"\t1. current answer (recommended)\n" +
				"\t2. (Enter manually)\n" +
				"\n" +
				"Please choose one [1-2]: \n",
			expResult: "current answer",
		},
		{
			name:          "No default answer only, enter manually",
			helpString:    "different explanation",
			prompt:        "different prompt",
			defaultAnswer: "",
			currAnswer:    "current answer",
			stdin: "2\n" +
				"user input\n",
			expPrompt: "different explanation\n" +
				"different prompt:\n" +
				"\n" +
				"\t1. current answer (recommended)\n" +
				"\t2. (Enter manually)\n" +
				"\n" +
				"Please choose one [1-2]: " +
				"Please enter manually: \n",
			expResult: "user input",
		},
		{
			name:          "No current answer only, chose default answer",
			helpString:    "different explanation",
			prompt:        "different prompt",
			defaultAnswer: "default answer",
			currAnswer:    "",
			stdin:         "1\n",
			expPrompt: "different explanation\n" +
				"different prompt:\n" +
				"\n" +
				"\t1. default answer (recommended)\n" +
				"\t2. (Enter manually)\n" +
				"\n" +
				"Please choose one [1-2]: \n",
			expResult: "default answer",
		},
		{
			name:          "No current answer only, enter manually",
			helpString:    "different explanation",
			prompt:        "different prompt",
			defaultAnswer: "default answer",
			currAnswer:    "",
			stdin: "2\n" +
				"user input\n",
			expPrompt: "different explanation\n" +
				"different prompt:\n" +
				"\n" +
				"\t1. default answer (recommended)\n" +
				"\t2. (Enter manually)\n" +
				"\n" +
				"Please choose one [1-2]: " +
				"Please enter manually: \n",
			expResult: "user input",
		},
		{
			name:          "Same default answer and current answer, chose default answer",
			helpString:    "different explanation",
			prompt:        "different prompt",
			defaultAnswer: "default answer",
			currAnswer:    "default answer",
			stdin:         "1\n",
			expPrompt: "different explanation\n" +
				"different prompt:\n" +
				"\n" +
				"\t1. default answer (recommended)\n" +
				"\t2. (Enter manually)\n" +
				"\n" +
				"Please choose one [1-2]: \n",
			expResult: "default answer",
		},
		{
			name:          "Same default answer and current answer, enter manually",
			helpString:    "different explanation",
			prompt:        "different prompt",
			defaultAnswer: "default answer",
			currAnswer:    "default answer",
			stdin: "2\n" +
				"user input",
			expPrompt: "different explanation\n" +
				"different prompt:\n" +
				"\n" +
				"\t1. default answer (recommended)\n" +
				"\t2. (Enter manually)\n" +
				"\n" +
				"Please choose one [1-2]: " +
				"Please enter manually: \n",
			expResult: "user input",
		},
		{
			name:          "Different default answer and current answer, chose default answer",
			helpString:    "different explanation",
			prompt:        "different prompt",
			defaultAnswer: "default answer",
			currAnswer:    "current answer",
			stdin:         "1\n",
			expPrompt: "different explanation\n" +
				"different prompt:\n" +
				"\n" +
				"\t1. default answer (recommended)\n" +
				"\t2. current answer\n" +
				"\t3. (Enter manually)\n" +
				"\n" +
				"Please choose one [1-3]: \n",
			expResult: "default answer",
		},
		{
			name:          "Empty response -- pick default",
			helpString:    "help",
			prompt:        "prompt",
			defaultAnswer: "one",
			currAnswer:    "two",
			stdin:         "\n",
			expPrompt: "help\n" +
				"prompt:\n" +
				"\n" +
				"\t1. one (recommended)\n" +
				"\t2. two\n" +
				"\t3. (Enter manually)\n" +
				"\n" +
				"Please choose one [1-3]: \n",
			expResult: "one",
		},
		{
			name:          "Different default answer and current answer, chose current answer",
			helpString:    "different explanation",
			prompt:        "different prompt",
			defaultAnswer: "default answer",
			currAnswer:    "current answer",
			stdin:         "2\n",
			expPrompt: "different explanation\n" +
				"different prompt:\n" +
				"\n" +
				"\t1. default answer (recommended)\n" +
				"\t2. current answer\n" +
				"\t3. (Enter manually)\n" +
				"\n" +
				"Please choose one [1-3]: \n",
			expResult: "current answer",
		},
		{
			name:          "Different default answer and current answer, enter manually",
			helpString:    "different explanation",
			prompt:        "different prompt",
			defaultAnswer: "default answer",
			currAnswer:    "current answer",
			stdin: "3\n" +
				"user input\n",
			expPrompt: "different explanation\n" +
				"different prompt:\n" +
				"\n" +
				"\t1. default answer (recommended)\n" +
				"\t2. current answer\n" +
				"\t3. (Enter manually)\n" +
				"\n" +
				"Please choose one [1-3]: " +
				"Please enter manually: \n",
			expResult: "user input",
		},
		{
			name:          "Invalid input",
			helpString:    "different explanation",
			prompt:        "different prompt",
			defaultAnswer: "default answer",
			currAnswer:    "current answer",
			stdin: "invalid input\n" +
				"1\n",
			expPrompt: "different explanation\n" +
				"different prompt:\n" +
				"\n" +
				"\t1. default answer (recommended)\n" +
				"\t2. current answer\n" +
				"\t3. (Enter manually)\n" +
				"\n" +
				"Please choose one [1-3]: " +
				"Please choose one [1-3]: \n",
			expResult: "default answer",
		},
	}

	type promptUserResult struct {
		resp string
		err  error
	}
	for _, test := range tests {
		// Setup mocks.
		out := bytes.NewBuffer(nil)
		stdinReader, stdinWriter := io.Pipe()
		stdout = out
		stdin = stdinReader

		// Start the promptUser function.
		resultChan := make(chan promptUserResult)
		go func() {
			resp, err := promptUser(test.helpString, test.prompt,
				test.defaultAnswer, test.currAnswer)
			resultChan <- promptUserResult{resp, err}
		}()

		// Provide the user input.
		fmt.Fprintln(stdinWriter, test.stdin)

		// Check that promptUser behaved as expected.
		result := <-resultChan
		assert.NoError(t, result.err, test.name)
		assert.Equal(t, test.expResult, result.resp, test.name)

		// Test the prompt after `promptUser` has exited so that we can be sure
		// we're not testing before `promptUser` has a chance to print to stdout.
		assert.Equal(t, test.expPrompt, out.String(), test.name)
	}
}


func TestDirectoryValidation(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, []byte("A"), 0644))
	missing := filepath.Join(dir, "missing")

	msg, ok := directoryValidationFn(dir)
	assert.True(t, ok)
	assert.Empty(t, msg)

	msg, ok = directoryValidationFn(file)
	assert.False(t, ok)
	assert.Equal(t, fmt.Sprintf("%q is not a directory. "+
		"Please pick another directory.", file), msg)

	msg, ok = directoryValidationFn(missing)
	assert.False(t, ok)
	assert.Equal(t, fmt.Sprintf("%q doesn't exist. Please create it, "+
		"or pick another directory.", missing), msg)
}

func TestIntervalValidation(t *testing.T) {
	tests := []struct {
		input     string
		expValid  bool
		expPrompt string
	}{
		{input: "30s", expValid: true},
		{input: "01:30:00", expValid: true},
		{
			input:     "5s",
			expPrompt: "The interval must be longer than 5s. Please enter another interval.",
		},
		{
			input: "often",
			expPrompt: `invalid duration "often": expected e.g. "30s" or "hh:mm:ss". ` +
				"Please enter another interval.",
		},
	}

	for _, test := range tests {
		prompt, ok := intervalValidationFn(test.input)
		assert.Equal(t, test.expValid, ok, test.input)
		assert.Equal(t, test.expPrompt, prompt, test.input)
	}
}

func TestSetupConfig(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "source")
	replica := filepath.Join(dir, "replica")
	require.NoError(t, os.Mkdir(source, 0755))
	require.NoError(t, os.Mkdir(replica, 0755))

	getWorkingDirectory = func() (string, error) { return dir, nil }
	parseConfig = func(path string) (config.Sync, error) {
		return config.Sync{}, errors.FileNotFound{Path: path}
	}

	var written config.Sync
	writeConfig = func(_ string, cfg config.Sync) error {
		written = cfg
		return nil
	}

	// The source and interval are set by flags, so the user is only prompted
	// for the replica. There's no guess for the replica, so it's entered
	// manually.
	out := bytes.NewBuffer(nil)
	stdinReader, stdinWriter := io.Pipe()
	stdout = out
	stdin = stdinReader
	go func() {
		// The first response isn't a directory, so the user is prompted
		// again.
		fmt.Fprintln(stdinWriter, "missing")
		fmt.Fprintln(stdinWriter, "replica")
	}()

	err := SetupConfig(cliOptions{
		configPath: "/tmp/syncfiler.yaml",
		source:     "source",
		interval:   "1m",
		logPath:    "sync.log",
	})
	require.NoError(t, err)

	exp := config.Default()
	exp.Source = source
	exp.Replica = replica
	exp.Interval = config.Duration(time.Minute)
	exp.LogPath = filepath.Join(dir, "sync.log")
	assert.Equal(t, exp, written)
	assert.Contains(t, out.String(), "Wrote config to /tmp/syncfiler.yaml\n")
}

func TestSetupConfigKeepsCurrentValues(t *testing.T) {
	dir := t.TempDir()
	getWorkingDirectory = func() (string, error) { return dir, nil }

	curr := config.Default()
	curr.Source = dir
	curr.Replica = t.TempDir()
	curr.Workers = 4
	curr.Watch = true
	parseConfig = func(string) (config.Sync, error) {
		return curr, nil
	}

	var written config.Sync
	writeConfig = func(_ string, cfg config.Sync) error {
		written = cfg
		return nil
	}
	stdout = bytes.NewBuffer(nil)

	err := SetupConfig(cliOptions{
		configPath: "/tmp/syncfiler.yaml",
		source:     curr.Source,
		replica:    curr.Replica,
		interval:   "00:10:00",
	})
	require.NoError(t, err)

	exp := curr
	exp.Interval = config.Duration(10 * time.Minute)
	assert.Equal(t, exp, written)
}

func TestSetupConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	getWorkingDirectory = func() (string, error) { return dir, nil }
	parseConfig = func(path string) (config.Sync, error) {
		return config.Sync{}, errors.FileNotFound{Path: path}
	}
	writeConfig = func(string, config.Sync) error {
		t.Fatal("Invalid config shouldn't be written")
		return nil
	}

	err := SetupConfig(cliOptions{
		configPath: "/tmp/syncfiler.yaml",
		source:     dir,
		replica:    dir,
		interval:   "1m",
	})
	assert.Equal(t, errors.NewFriendlyError("The source and replica directories "+
		"must be different, but both are %q.", dir), err)
}
