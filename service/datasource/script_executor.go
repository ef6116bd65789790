/*
 * @module service/datasource/script_executor
 * @description Yaegi脚本执行器，支持对接入报文做可配置的字段归一化转换
 * @architecture 解释器模式 - 运行期编译并缓存转换脚本
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 脚本编译(一次) -> 报文逐条转换
 * @rules 脚本必须导出 Transform(record map[string]interface{}) (map[string]interface{}, error)
 * @dependencies github.com/traefik/yaegi/interp, github.com/traefik/yaegi/stdlib
 * @refs mqtt.go
 */

package datasource

import (
	"fmt"
	"sync"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// TransformFunc 报文转换函数签名
type TransformFunc func(record map[string]interface{}) (map[string]interface{}, error)

// ScriptExecutor 转换脚本执行器，编译结果按脚本内容缓存
type ScriptExecutor struct {
	mu    sync.Mutex
	cache map[string]TransformFunc
}

// NewScriptExecutor 创建脚本执行器
func NewScriptExecutor() *ScriptExecutor {
	return &ScriptExecutor{cache: make(map[string]TransformFunc)}
}

// Compile 编译转换脚本，重复编译走缓存
func (e *ScriptExecutor) Compile(script string) (TransformFunc, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if fn, ok := e.cache[script]; ok {
		return fn, nil
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("加载脚本标准库失败: %w", err)
	}
	if _, err := i.Eval(script); err != nil {
		return nil, fmt.Errorf("脚本编译失败: %w", err)
	}

	v, err := i.Eval("Transform")
	if err != nil {
		return nil, fmt.Errorf("脚本缺少Transform入口: %w", err)
	}
	fn, ok := v.Interface().(func(map[string]interface{}) (map[string]interface{}, error))
	if !ok {
		return nil, fmt.Errorf("Transform签名不符, 期望 func(map[string]interface{}) (map[string]interface{}, error)")
	}

	e.cache[script] = TransformFunc(fn)
	return TransformFunc(fn), nil
}
