package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// HSVRange диапазон цвета в пространстве HSV по шкале OpenCV (H 0-180, S и V 0-255)
type HSVRange struct {
	Lower [3]float64 `mapstructure:"lower"`
	Upper [3]float64 `mapstructure:"upper"`
}

// Overlaps пересекаются ли два диапазона (границы включительно)
func (r HSVRange) Overlaps(o HSVRange) bool {
	for i := 0; i < 3; i++ {
		if r.Upper[i] < o.Lower[i] || o.Upper[i] < r.Lower[i] {
			return false
		}
	}
	return true
}

// IsZero диапазон не задан
func (r HSVRange) IsZero() bool {
	return r == HSVRange{}
}

// Theme пара диапазонов для зеленых и желтых плиток
type Theme struct {
	Green  HSVRange `mapstructure:"green"`
	Yellow HSVRange `mapstructure:"yellow"`
}

// Встроенные темы игры
var Themes = map[string]Theme{
	"dark": {
		Green:  HSVRange{Lower: [3]float64{45, 60, 60}, Upper: [3]float64{70, 255, 200}},
		Yellow: HSVRange{Lower: [3]float64{15, 60, 60}, Upper: [3]float64{35, 255, 230}},
	},
	"light": {
		Green:  HSVRange{Lower: [3]float64{45, 60, 100}, Upper: [3]float64{70, 255, 255}},
		Yellow: HSVRange{Lower: [3]float64{15, 60, 100}, Upper: [3]float64{35, 255, 255}},
	},
}

// Структура для координат с размером
type CoordinatesWithSize struct {
	X      int `mapstructure:"x"`
	Y      int `mapstructure:"y"`
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// Grid геометрия сетки
type Grid struct {
	RowsExpected    int `mapstructure:"rows_expected"`
	ColumnsExpected int `mapstructure:"columns_expected"`
	MinTileDim      int `mapstructure:"min_tile_dim"`
	MaxTileDim      int `mapstructure:"max_tile_dim"`
	RowTolerance    int `mapstructure:"row_tolerance"` // разброс по Y внутри одной строки, px
}

// Locator параметры поиска контуров
type Locator struct {
	BlurKernel   int     `mapstructure:"blur_kernel"`
	CannyLow     float64 `mapstructure:"canny_low"`
	CannyHigh    float64 `mapstructure:"canny_high"`
	DilateKernel int     `mapstructure:"dilate_kernel"`
}

// Classifier параметры классификации цвета
type Classifier struct {
	Theme          string   `mapstructure:"theme"`
	MatchThreshold float64  `mapstructure:"match_threshold"`
	Green          HSVRange `mapstructure:"green"`
	Yellow         HSVRange `mapstructure:"yellow"`
}

// Ranges возвращает диапазоны с учетом темы; явно заданные в конфиге диапазоны важнее темы
func (c Classifier) Ranges() (green, yellow HSVRange) {
	theme := Themes[c.Theme]
	green, yellow = theme.Green, theme.Yellow
	if !c.Green.IsZero() {
		green = c.Green
	}
	if !c.Yellow.IsZero() {
		yellow = c.Yellow
	}
	return green, yellow
}

// Database параметры подключения к MySQL
type Database struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

// Serial порт платы-индикатора
type Serial struct {
	Port     string `mapstructure:"port"`
	BaudRate int    `mapstructure:"baud_rate"`
}

// Основная структура конфигурации
type Config struct {
	StartDelaySeconds float64             `mapstructure:"start_delay_seconds"`
	Grid              Grid                `mapstructure:"grid"`
	Locator           Locator             `mapstructure:"locator"`
	Classifier        Classifier          `mapstructure:"classifier"`
	LogFilePath       string              `mapstructure:"log_file_path"`
	SaveToDB          int                 `mapstructure:"save_to_db"`
	Database          Database            `mapstructure:"database"`
	Serial            Serial              `mapstructure:"serial"`
	Screenshot        CoordinatesWithSize `mapstructure:"screenshot"` // область экрана для calibrate --screen
}

// SetDefaults регистрирует значения по умолчанию
func SetDefaults(v *viper.Viper) {
	v.SetDefault("start_delay_seconds", 1.0)

	v.SetDefault("grid.rows_expected", 6)
	v.SetDefault("grid.columns_expected", 5)
	v.SetDefault("grid.min_tile_dim", 40)
	v.SetDefault("grid.max_tile_dim", 100)
	v.SetDefault("grid.row_tolerance", 10)

	v.SetDefault("locator.blur_kernel", 5)
	v.SetDefault("locator.canny_low", 50)
	v.SetDefault("locator.canny_high", 150)
	v.SetDefault("locator.dilate_kernel", 3)

	v.SetDefault("classifier.theme", "dark")
	v.SetDefault("classifier.match_threshold", 0.70)

	v.SetDefault("log_file_path", "logs/wordlewatch.log")
	v.SetDefault("save_to_db", 0)

	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", "3306")
	v.SetDefault("database.user", "root")
	v.SetDefault("database.name", "wordlewatch")

	v.SetDefault("serial.port", "")
	v.SetDefault("serial.baud_rate", 9600)

	v.SetDefault("screenshot.x", 0)
	v.SetDefault("screenshot.y", 0)
	v.SetDefault("screenshot.width", 0)
	v.SetDefault("screenshot.height", 0)
}

// Default конфигурация без файла
func Default() Config {
	v := viper.New()
	SetDefaults(v)
	var c Config
	// значения по умолчанию всегда раскладываются в структуру
	_ = v.Unmarshal(&c)
	return c
}

// InitConfig читает config.yaml (или файл по пути path), переменные окружения
// WORDLEWATCH_* и DB_* и проверяет результат
func InitConfig(path string) (Config, error) {
	v := viper.New()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config") // Имя конфигурационного файла без расширения
		v.AddConfigPath(".")      // Путь к файлу конфигурации
		v.SetConfigType("yaml")   // Формат файла
	}

	v.SetEnvPrefix("wordlewatch")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// как в web_viewer: параметры БД можно передать через DB_HOST, DB_PORT и т.д.
	for key, env := range map[string]string{
		"database.host":     "DB_HOST",
		"database.port":     "DB_PORT",
		"database.user":     "DB_USER",
		"database.password": "DB_PASSWORD",
		"database.name":     "DB_NAME",
	} {
		if err := v.BindEnv(key, "WORDLEWATCH_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// без файла работаем на значениях по умолчанию, но явно указанный файл обязателен
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate проверяет согласованность параметров
func (c Config) Validate() error {
	g := c.Grid
	if g.RowsExpected <= 0 || g.ColumnsExpected <= 0 {
		return fmt.Errorf("grid: rows_expected и columns_expected должны быть > 0 (%d x %d)", g.RowsExpected, g.ColumnsExpected)
	}
	if g.MinTileDim <= 0 || g.MaxTileDim < g.MinTileDim {
		return fmt.Errorf("grid: некорректный диапазон размеров плитки [%d, %d]", g.MinTileDim, g.MaxTileDim)
	}
	if g.RowTolerance < 0 {
		return fmt.Errorf("grid: row_tolerance < 0")
	}
	if c.StartDelaySeconds < 0 {
		return fmt.Errorf("start_delay_seconds < 0")
	}
	if c.Locator.BlurKernel > 0 && c.Locator.BlurKernel%2 == 0 {
		return fmt.Errorf("locator: blur_kernel должен быть нечетным, получено %d", c.Locator.BlurKernel)
	}

	cl := c.Classifier
	if cl.MatchThreshold <= 0 || cl.MatchThreshold >= 1 {
		return fmt.Errorf("classifier: match_threshold должен быть в (0, 1), получено %v", cl.MatchThreshold)
	}
	if _, ok := Themes[cl.Theme]; !ok && (cl.Green.IsZero() || cl.Yellow.IsZero()) {
		return fmt.Errorf("classifier: неизвестная тема %q", cl.Theme)
	}
	green, yellow := cl.Ranges()
	for name, r := range map[string]HSVRange{"green": green, "yellow": yellow} {
		for i := 0; i < 3; i++ {
			if r.Lower[i] > r.Upper[i] {
				return fmt.Errorf("classifier: %s lower > upper в канале %d", name, i)
			}
		}
	}
	if green.Overlaps(yellow) {
		return fmt.Errorf("classifier: диапазоны green и yellow пересекаются")
	}
	return nil
}
