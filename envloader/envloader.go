package envloader

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

type mode int

const (
	useEnv mode = 1 << iota
	useDefaults
	onlyZeroDefaults
)

// Load preenche uma struct com valores de variáveis de ambiente baseado nas
// tags "env" e "envDefault".
//
// Uma variável definida sempre sobrescreve o campo. O valor de "envDefault"
// só é aplicado quando o campo ainda está com o zero value.
func Load(config interface{}) error {
	return load(config, useEnv|useDefaults|onlyZeroDefaults)
}

// SetDefaults aplica "envDefault" em todos os campos marcados, sem consultar o
// ambiente. Usado antes de sobrepor arquivos de configuração.
func SetDefaults(config interface{}) error {
	return load(config, useDefaults)
}

// LoadEnv aplica apenas as variáveis de ambiente definidas, preservando o
// valor atual dos demais campos (inclusive false/0 vindos de arquivos).
func LoadEnv(config interface{}) error {
	return load(config, useEnv)
}

func load(config interface{}, m mode) error {
	val := reflect.ValueOf(config)
	if val.Kind() != reflect.Ptr || val.Elem().Kind() != reflect.Struct {
		return &InvalidConfigError{Value: val.Type()}
	}

	return loadStruct(val.Elem(), m)
}

// loadStruct processa recursivamente uma struct
func loadStruct(val reflect.Value, m mode) error {
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct && field.Type() != durationType {
			if err := loadStruct(field, m); err != nil {
				return err
			}
			continue
		}

		if field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct {
			if field.IsNil() {
				field.Set(reflect.New(field.Type().Elem()))
			}
			if err := loadStruct(field.Elem(), m); err != nil {
				return err
			}
			continue
		}

		name, required := parseTag(fieldType.Tag.Get("env"))
		if name == "" {
			continue
		}

		var value string
		if m&useEnv != 0 {
			value = os.Getenv(name)
		}
		if value == "" && m&useDefaults != 0 {
			if m&onlyZeroDefaults == 0 || field.IsZero() {
				value = fieldType.Tag.Get("envDefault")
			}
		}

		if value == "" {
			if required && m&useEnv != 0 && field.IsZero() {
				return &MissingVarError{FieldName: fieldType.Name, EnvVar: name}
			}
			continue
		}

		if err := setFieldValue(field, value); err != nil {
			return &FieldError{
				FieldName: fieldType.Name,
				EnvVar:    name,
				Value:     value,
				Err:       err,
			}
		}
	}

	return nil
}

// parseTag separa o nome da variável das opções (ex: `env:"DB_HOST,required"`)
func parseTag(tag string) (string, bool) {
	parts := strings.Split(tag, ",")
	name := strings.TrimSpace(parts[0])

	required := false
	for _, opt := range parts[1:] {
		if strings.TrimSpace(opt) == "required" {
			required = true
		}
	}
	return name, required
}

// setFieldValue define o valor de um campo baseado no seu tipo
func setFieldValue(field reflect.Value, value string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(intValue)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		uintValue, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(uintValue)

	case reflect.Bool:
		boolValue, err := strconv.ParseBool(strings.ToLower(value))
		if err != nil {
			return err
		}
		field.SetBool(boolValue)

	case reflect.Float32, reflect.Float64:
		floatValue, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(floatValue)

	default:
		return &UnsupportedTypeError{Type: field.Type()}
	}

	return nil
}

// MustLoad é similar ao Load, mas panic em caso de erro
func MustLoad(config interface{}) {
	if err := Load(config); err != nil {
		panic(err)
	}
}
