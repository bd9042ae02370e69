package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind 表示一个JSON值的形态（对象/数组/标量）
type Kind int

const (
	KindNull Kind = iota
	KindObject
	KindArray
	KindString
	KindNumber
	KindBool
)

// Value 保序的JSON值
// encoding/json的map会丢失键的出现顺序，而平铺输出要求严格按照
// 原始记录的键序遍历，所以这里基于token流自行解码，保留对象键序
type Value struct {
	Kind   Kind
	Str    string            // Kind == KindString
	Num    json.Number       // Kind == KindNumber
	Bool   bool              // Kind == KindBool
	Keys   []string          // Kind == KindObject，键按出现顺序
	Fields map[string]*Value // Kind == KindObject
	Items  []*Value          // Kind == KindArray
}

// DecodeValue 从解码器中读取一个完整的JSON值
// 调用方应提前开启 dec.UseNumber()，以避免数字被转为float64后丢失原始表示
func DecodeValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return valueFromToken(dec, tok)
}

func valueFromToken(dec *json.Decoder, tok json.Token) (*Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			v := &Value{Kind: KindObject, Fields: make(map[string]*Value)}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("对象键不是字符串: %v", keyTok)
				}
				child, err := DecodeValue(dec)
				if err != nil {
					return nil, err
				}
				// 重复键保留首次出现的位置，值取后者
				if _, dup := v.Fields[key]; !dup {
					v.Keys = append(v.Keys, key)
				}
				v.Fields[key] = child
			}
			if _, err := dec.Token(); err != nil { // 消费 '}'
				return nil, err
			}
			return v, nil
		case '[':
			v := &Value{Kind: KindArray}
			for dec.More() {
				child, err := DecodeValue(dec)
				if err != nil {
					return nil, err
				}
				v.Items = append(v.Items, child)
			}
			if _, err := dec.Token(); err != nil { // 消费 ']'
				return nil, err
			}
			return v, nil
		}
		return nil, fmt.Errorf("意外的JSON定界符: %v", t)
	case string:
		return &Value{Kind: KindString, Str: t}, nil
	case json.Number:
		return &Value{Kind: KindNumber, Num: t}, nil
	case float64:
		// 未开启UseNumber时的兜底
		return &Value{Kind: KindNumber, Num: json.Number(strconv.FormatFloat(t, 'g', -1, 64))}, nil
	case bool:
		return &Value{Kind: KindBool, Bool: t}, nil
	case nil:
		return &Value{Kind: KindNull}, nil
	}
	return nil, fmt.Errorf("无法识别的JSON token: %v", tok)
}

// IsScalar 判断该值是否为标量（字符串/数字/布尔/null）
func (v *Value) IsScalar() bool {
	return v.Kind != KindObject && v.Kind != KindArray
}

// Field 返回对象中指定键的值，不存在或本身不是对象时返回nil
func (v *Value) Field(key string) *Value {
	if v == nil || v.Kind != KindObject {
		return nil
	}
	return v.Fields[key]
}

// ScalarText 将值渲染为单元格文本
// 标量使用其自然文本表示；残留的嵌套结构序列化为紧凑JSON，而不是报错
func (v *Value) ScalarText() string {
	if v == nil {
		return ""
	}
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return v.Num.String()
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindNull:
		return ""
	default:
		return v.CompactJSON()
	}
}

// CompactJSON 按原始键序序列化为紧凑JSON文本
func (v *Value) CompactJSON() string {
	var buf bytes.Buffer
	v.encode(&buf)
	return buf.String()
}

func (v *Value) encode(buf *bytes.Buffer) {
	if v == nil {
		buf.WriteString("null")
		return
	}
	switch v.Kind {
	case KindObject:
		buf.WriteByte('{')
		for i, key := range v.Keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyJSON, _ := json.Marshal(key)
			buf.Write(keyJSON)
			buf.WriteByte(':')
			v.Fields[key].encode(buf)
		}
		buf.WriteByte('}')
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			item.encode(buf)
		}
		buf.WriteByte(']')
	case KindString:
		strJSON, _ := json.Marshal(v.Str)
		buf.Write(strJSON)
	case KindNumber:
		buf.WriteString(v.Num.String())
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.Bool))
	case KindNull:
		buf.WriteString("null")
	}
}
