// Управление конфигурацией сервиса конвертации из переменных окружения.
// Содержит структуру Config для хранения параметров и функцию ReadConfig для их загрузки.
//
// Основные возможности:
//   - Загрузка конфигурации из переменных окружения с использованием тегов struct.
//   - Преобразование типов данных из переменных окружения (string, int, bool).
//   - Маскировка секретных значений (токены) в логах.
//   - Значения по умолчанию для адресов и лимитов.
package config

import (
	"log/slog"
	"reflect"
	"strings"
)

type Config struct {
	ListenAddr      string `env:"CARBON_LISTEN_ADDR"`
	MetricsAddr     string `env:"CARBON_METRICS_ADDR"`
	MetricsDisabled bool   `env:"CARBON_METRICS_DISABLED"`
	BodyLimit       string `env:"CARBON_BODY_LIMIT"`
	// Конвертаций в минуту с одного IP, 0 - без ограничения
	RateLimit int `env:"CARBON_RATE_LIMIT"`

	Minify          bool   `env:"CARBON_MINIFY"`
	AttrRulesPath   string `env:"CARBON_ATTR_RULES"`
	SanitizeRawHTML bool   `env:"CARBON_SANITIZE_RAW_HTML"`

	APIToken string `env:"CARBON_API_TOKEN"`
}

// ReadConfig загружает конфигурацию из переменных окружения и подставляет значения по умолчанию
// для незаданных адресов и лимита тела запроса.
func ReadConfig() *Config {
	config := &Config{}

	envConfig("env", config)

	if config.ListenAddr == "" {
		config.ListenAddr = ":8080"
	}

	if config.MetricsAddr == "" {
		config.MetricsAddr = ":2112"
	}

	if config.BodyLimit == "" {
		config.BodyLimit = "5M"
	}

	return config
}

// Присваивает полям в переданной структуре значения переменных. Название переменной для каждого поля лежит в теге этого поля.
func envConfig(key string, s interface{}) {
	v := reflect.ValueOf(s).Elem()
	typeParam := v.Type()
	for i := 0; i < v.NumField(); i++ {
		fName := typeParam.Field(i).Name
		fEnvTag := typeParam.Field(i).Tag.Get(key)

		if !Exist(fEnvTag) {
			continue
		}

		logValue := GetEnv(fEnvTag)
		if logValue == "" {
			continue
		}

		// Secure tokens in log
		if isSecret(fName) {
			logValue = maskValue(logValue)
		}
		slog.Info("Set config value",
			slog.String("key", typeParam.Name()+"."+fName),
			slog.String("value", logValue),
			slog.String("source", "ENVIRONMENT"),
		)

		switch v.Field(i).Interface().(type) {
		case string:
			v.Field(i).SetString(GetEnv(fEnvTag))
		case int:
			v.Field(i).SetInt(int64(GetIntEnv(fEnvTag)))
		case bool:
			v.Field(i).SetBool(GetBoolEnv(fEnvTag))
		}
	}
}

func isSecret(fieldName string) bool {
	name := strings.ToLower(fieldName)
	return strings.Contains(name, "pass") || strings.Contains(name, "secret") || strings.Contains(name, "token")
}

func maskValue(value string) string {
	runes := []rune(value)
	if len(runes) <= 2 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
}
