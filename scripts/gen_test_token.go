// ============================================================================
// 测试 Token 生成脚本
// ============================================================================
//
// 用途：生成用于在场网关 /ws 连接测试的 JWT Token
// 运行：go run scripts/gen_test_token.go
//
// ============================================================================

package main

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func main() {
	// 与 app/presence/ws/etc/presence.yaml 中的 AccessSecret 保持一致
	accessSecret := "community-bot-access-secret"

	// 测试用户ID
	testUserID := uint64(10001)

	// Token 有效期：30天（测试使用）
	expireAt := time.Now().Add(30 * 24 * time.Hour).Unix()

	// 创建 Token（claims 结构与 app/presence/ws/internal/svc/jwt_auth.go 一致）
	claims := jwt.MapClaims{
		"userId": testUserID,
		"exp":    expireAt,
		"iat":    time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(accessSecret))
	if err != nil {
		fmt.Printf("生成 Token 失败: %v\n", err)
		return
	}

	fmt.Println("============================================")
	fmt.Println("测试 JWT Token 生成成功！")
	fmt.Println("============================================")
	fmt.Printf("用户ID: %d\n", testUserID)
	fmt.Printf("过期时间: %s\n", time.Unix(expireAt, 0).Format("2006-01-02 15:04:05"))
	fmt.Println("--------------------------------------------")
	fmt.Println(tokenString)
}
