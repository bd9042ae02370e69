package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRecord_ValidObject(t *testing.T) {
	raw := `
	{
		"Candidate": {"FullName": "Jane Doe", "Email": "jane@example.com"},
		"Skills": ["Go", "SQL"]
	}`

	record, err := ValidateRecord(raw)
	require.NoError(t, err, "合法对象响应不应报错")
	require.NotNil(t, record)

	assert.Equal(t, []string{"Candidate", "Skills"}, record.SectionNames())
	assert.Equal(t, "Jane Doe", record.FullName())
}

func TestValidateRecord_MalformedResponse(t *testing.T) {
	// 模型没按要求输出JSON，而是自然语言
	cases := []string{
		"I'm sorry, I cannot process this document.",
		"```json\n{\"Candidate\": {}}\n```",
		"",
		"   \n\t  ",
	}
	for _, raw := range cases {
		_, err := ValidateRecord(raw)
		assert.ErrorIs(t, err, ErrMalformedResponse, "非'{'开头的响应应判为畸形: %q", raw)
	}
}

func TestValidateRecord_InvalidJSON(t *testing.T) {
	_, err := ValidateRecord(`{"Candidate": {"FullName": "Jane"`)
	assert.ErrorIs(t, err, ErrInvalidJSON, "截断的JSON应判为解析失败")

	_, err = ValidateRecord(`{"Candidate": } `)
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestValidateRecord_TrailingContentRejected(t *testing.T) {
	// 整段响应必须恰好是一个JSON对象，对象之后的任何内容都算解析失败
	cases := []string{
		`{"Candidate": {"FullName": "Jane"}} Here is the extracted data as requested.`,
		`{"Candidate": {}} {"Candidate": {}}`,
		`{"Candidate": {}}]`,
		`{} trailing`,
	}
	for _, raw := range cases {
		_, err := ValidateRecord(raw)
		assert.ErrorIs(t, err, ErrInvalidJSON, "带尾部多余内容的响应应判为解析失败: %q", raw)
	}

	// 尾部纯空白不算多余内容
	record, err := ValidateRecord("{\"Candidate\": {\"FullName\": \"Jane\"}} \n\t ")
	require.NoError(t, err)
	assert.Equal(t, "Jane", record.FullName())
}

func TestValidateRecord_MissingSectionsIsNotError(t *testing.T) {
	// 形状校验只查顶层是对象，区块缺失交给下游按"无数据"处理
	record, err := ValidateRecord(`{}`)
	require.NoError(t, err)
	assert.Empty(t, record.SectionNames())
	assert.Equal(t, "", record.FullName())

	record, err = ValidateRecord(`{"Unexpected": 1}`)
	require.NoError(t, err)
	assert.Nil(t, record.Section("Candidate"))
}

func TestValidateRecord_PreservesKeyOrder(t *testing.T) {
	record, err := ValidateRecord(`{"Zeta": {}, "Alpha": {}, "Candidate": {}}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Zeta", "Alpha", "Candidate"}, record.SectionNames())
}

func TestValidateRecord_NumericFullNameRendersAsText(t *testing.T) {
	record, err := ValidateRecord(`{"Candidate": {"FullName": 42}}`)
	require.NoError(t, err)
	assert.Equal(t, "42", record.FullName())
}

func TestValidateRecord_NestedFullNameIgnored(t *testing.T) {
	record, err := ValidateRecord(`{"Candidate": {"FullName": {"first": "Jane"}}}`)
	require.NoError(t, err)
	assert.Equal(t, "", record.FullName(), "非标量姓名不用于表名")
}
