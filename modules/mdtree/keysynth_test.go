package mdtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSynthesizeKeyTagRule(t *testing.T) {
	content := "<fields>\n    <fullName>Foo__c</fullName>\n    <type>Text</type>\n</fields>\n"
	key, shape := SynthesizeKey(content, []string{"fullName"})
	assert.Equal(t, "Foo__c", key)
	assert.Equal(t, SIMPLE, shape)
}

func TestSynthesizeKeyFirstRuleWins(t *testing.T) {
	content := "<fieldPermissions>\n    <editable>true</editable>\n    <field>Account.Name</field>\n</fieldPermissions>\n"
	key, _ := SynthesizeKey(content, []string{"field", "editable"})
	assert.Equal(t, "Account.Name", key)
}

func TestSynthesizeKeySingleRule(t *testing.T) {
	key, _ := SynthesizeKey("<indexes/>\n", []string{RuleSingle})
	assert.Equal(t, LevelSingle, key)
}

func TestSynthesizeKeyComplexShape(t *testing.T) {
	content := "<recordTypes>\n    <fullName>Foo</fullName>\n    <picklistValues>\n        <picklist>Status</picklist>\n    </picklistValues>\n</recordTypes>\n"
	_, shape := SynthesizeKey(content, []string{"fullName"})
	assert.Equal(t, COMPLEX, shape)
}

func TestSynthesizeKeyMD5FallbackDeterministic(t *testing.T) {
	content := "<layoutItems>\n    <behavior>Required</behavior>\n</layoutItems>\n"
	key1, _ := SynthesizeKey(content, nil)
	key2, _ := SynthesizeKey(content, nil)
	assert.Equal(t, key1, key2)
	assert.True(t, isMD5FallbackKey(key1), "expected 32 lowercase hex chars, got %q", key1)
}

func TestSynthesizeKeyContentRuleForcesFallback(t *testing.T) {
	content := "<layoutItems>\n    <field>Name</field>\n</layoutItems>\n"
	key, _ := SynthesizeKey(content, []string{RuleContent})
	assert.True(t, isMD5FallbackKey(key))
}

func TestSynthesizeKeyIdenticalContentEqualKeys(t *testing.T) {
	a := "<layoutItems>\n    <field>Name</field>\n</layoutItems>\n"
	b := "<layoutItems>\n  <field>Name</field>\n</layoutItems>\n"
	keyA, _ := SynthesizeKey(a, nil)
	keyB, _ := SynthesizeKey(b, nil)
	assert.Equal(t, keyA, keyB, "leading whitespace must not affect the fallback key")
}
