// Package util provides utility functions for content hashing and cache key derivation.
package util

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"unicode/utf8"
)

// ErrInvalidUTF8 is returned for values whose strings json would rewrite to U+FFFD.
var ErrInvalidUTF8 = errors.New("string is not valid UTF-8")

func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

func ContentHashString(content string) string {
	return ContentHash([]byte(content))
}

// CacheKey derives a stable lookup key for v under namespace.
// v must encode deterministically: structs, slices and maps of exported fields.
// Strings must be valid UTF-8, otherwise distinct values could share a key.
func CacheKey(namespace string, v any) (string, error) {
	if !validUTF8(reflect.ValueOf(v)) {
		return "", fmt.Errorf("encode cache key for %s: %w", namespace, ErrInvalidUTF8)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode cache key for %s: %w", namespace, err)
	}
	return namespace + ":" + ContentHash(data), nil
}

func validUTF8(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return utf8.ValidString(v.String())
	case reflect.Pointer, reflect.Interface:
		return v.IsNil() || validUTF8(v.Elem())
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).IsExported() && !validUTF8(v.Field(i)) {
				return false
			}
		}
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return true
		}
		for i := 0; i < v.Len(); i++ {
			if !validUTF8(v.Index(i)) {
				return false
			}
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if !validUTF8(iter.Key()) || !validUTF8(iter.Value()) {
				return false
			}
		}
	}
	return true
}
