/*
 * @module service/datasource/script_executor_test
 * @description 转换脚本执行器单元测试
 * @architecture 测试层
 * @documentReference .specify/memory/test_plan.md
 * @stateFlow 脚本编译 -> 报文转换 -> 断言
 * @rules 纯内存执行，禁止依赖外部环境
 * @dependencies testify
 * @refs script_executor.go
 */

package datasource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const renameScript = `
func Transform(record map[string]interface{}) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	for k, v := range record {
		out[k] = v
	}
	if v, ok := record["temp"]; ok {
		out["temperature"] = v
		delete(out, "temp")
	}
	return out, nil
}
`

func TestCompileAndTransform(t *testing.T) {
	executor := NewScriptExecutor()

	fn, err := executor.Compile(renameScript)
	require.NoError(t, err)

	out, err := fn(map[string]interface{}{"temp": 18.5, "diag_id": 42})
	require.NoError(t, err)
	assert.Equal(t, 18.5, out["temperature"])
	assert.Equal(t, 42, out["diag_id"])
	_, hasOld := out["temp"]
	assert.False(t, hasOld)
}

func TestCompileCaches(t *testing.T) {
	executor := NewScriptExecutor()

	first, err := executor.Compile(renameScript)
	require.NoError(t, err)
	second, err := executor.Compile(renameScript)
	require.NoError(t, err)
	// 相同脚本直接命中缓存
	assert.Equal(t, len(executor.cache), 1)
	_ = first
	_ = second
}

func TestCompileRejectsBrokenScripts(t *testing.T) {
	executor := NewScriptExecutor()

	_, err := executor.Compile("func Transform(") // 语法错误
	assert.Error(t, err)

	_, err = executor.Compile("func Other() {}") // 缺少入口
	assert.ErrorContains(t, err, "Transform")

	// 签名不符
	_, err = executor.Compile("func Transform(a int) int { return a }")
	assert.ErrorContains(t, err, "签名不符")
}
