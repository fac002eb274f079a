package btrieve

import (
	"encoding"
	"encoding/base64"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// EnumHookFunc decodes enumeration names ("UNSIGNED_BINARY") into their
// typed values.
func EnumHookFunc() mapstructure.DecodeHookFunc {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || !reflect.PtrTo(t).Implements(textUnmarshalerType) {
			return data, nil
		}

		v := reflect.New(t)
		err := v.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(data.(string)))
		if err != nil {
			return nil, err
		}
		return v.Elem().Interface(), nil
	}
}

// BytesHookFunc reads byte slices as base64 strings, the way they are
// encoded in JSON.
func BytesHookFunc() mapstructure.DecodeHookFunc {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf([]byte{}) {
			return data, nil
		}
		return base64.StdEncoding.DecodeString(data.(string))
	}
}

// Decode fills result (file, index, filter or bulk attributes) from a
// generic map such as a decoded YAML document or JSON body.
func Decode(input interface{}, result interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			EnumHookFunc(),
			BytesHookFunc(),
		),
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           result,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}
