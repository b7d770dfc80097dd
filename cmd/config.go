package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"corpusgen.dev/pkg/corpusgen/internal/domain"
	m "corpusgen.dev/pkg/corpusgen/internal/model"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "corpusgen"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	rootFlagName       = "root"
	includeFlagName    = "include"
	excludeFlagName    = "exclude"
	recursiveFlagName  = "recursive"
	skipDirFlagName    = "skip-dir"
	targetFlagName     = "target"
	directivesFlagName = "directives"
	planFlagName       = "plan"
	verboseFlagName    = "verbose"
	parallelFlagName   = "parallel"
	commandFlagName    = "command"
	timeoutFlagName    = "timeout"
	debounceFlagName   = "debounce"

	corpusRootKey      = "corpus.root"
	corpusIncludeKey   = "corpus.include"
	corpusExcludeKey   = "corpus.exclude"
	corpusRecursiveKey = "corpus.recursive"
	corpusSkipDirsKey  = "corpus.skip_dirs"
	targetClassKey     = "target.class"
	targetDirectiveKey = "target.directives"
	targetExclusionKey = "target.exclusions"
	planOutputKey      = "plan.output"
	runCommandKey      = "run.command"
	runParallelKey     = "run.parallel"
	runTimeoutKey      = "run.timeout"
	checkParallelKey   = "check.parallel"
	watchDebounceKey   = "watch.debounce"

	defaultCorpusRoot    = "."
	defaultInclude       = `re:^(.+)\.kt$`
	defaultRecursive     = true
	defaultPlanOutput    = ".corpusgen/plan.yaml"
	defaultRunParallel   = 1
	defaultRunTimeout    = 30 * time.Second
	defaultCheckParallel = 4
	defaultWatchDebounce = domain.DefaultWatchDebounce

	envPrefix = "CORPUSGEN"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".corpusgen.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var defaultSkipDirs = []string{".git", ".corpusgen"}

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(corpusRootKey, defaultCorpusRoot)
	viper.SetDefault(corpusIncludeKey, defaultInclude)
	viper.SetDefault(corpusExcludeKey, "")
	viper.SetDefault(corpusRecursiveKey, defaultRecursive)
	viper.SetDefault(corpusSkipDirsKey, defaultSkipDirs)
	viper.SetDefault(targetClassKey, "")
	viper.SetDefault(targetDirectiveKey, false)
	viper.SetDefault(targetExclusionKey, map[string][]string{})
	viper.SetDefault(planOutputKey, defaultPlanOutput)
	viper.SetDefault(runCommandKey, "")
	viper.SetDefault(runParallelKey, defaultRunParallel)
	viper.SetDefault(runTimeoutKey, int64(defaultRunTimeout.Seconds()))
	viper.SetDefault(checkParallelKey, defaultCheckParallel)
	viper.SetDefault(watchDebounceKey, defaultWatchDebounce.Milliseconds())

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

// corpusArgsFromConfig collects generation inputs from flags, environment
// and corpusgen.yaml.
func corpusArgsFromConfig() domain.CorpusArgs {
	return domain.CorpusArgs{
		Root: m.Path(viper.GetString(corpusRootKey)),
		Rule: m.RuleSpec{
			Include:   viper.GetString(corpusIncludeKey),
			Exclude:   viper.GetString(corpusExcludeKey),
			Recursive: viper.GetBool(corpusRecursiveKey),
		},
		Target:     targetFromConfig(),
		Exclusions: exclusionsFromConfig(),
		Directives: viper.GetBool(targetDirectiveKey),
		SkipDirs:   viper.GetStringSlice(corpusSkipDirsKey),
	}
}

// Target classes are upper-cased because viper folds map keys to lower case.
func targetFromConfig() m.TargetClass {
	return m.TargetClass(strings.ToUpper(strings.TrimSpace(viper.GetString(targetClassKey))))
}

func exclusionsFromConfig() m.ExclusionTable {
	raw := viper.GetStringMapStringSlice(targetExclusionKey)
	if len(raw) == 0 {
		return nil
	}

	table := make(m.ExclusionTable, len(raw))
	for target, predicates := range raw {
		key := m.TargetClass(strings.ToUpper(target))
		table[key] = append(table[key], predicates...)
	}

	return table
}

func planPathFromConfig() m.Path {
	return m.Path(viper.GetString(planOutputKey))
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at the configured level; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
