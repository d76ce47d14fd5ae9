//go:build wireinject
// +build wireinject

package main

import (
	"github.com/bradfitz/gomemcache/memcache"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/polyauthz/groupgate/util"
	"github.com/polyauthz/groupgate/x/auth"
	"github.com/polyauthz/groupgate/x/policy"
	"github.com/polyauthz/groupgate/x/socket"
	"github.com/polyauthz/groupgate/x/token"
)

var policyProvider = wire.NewSet(policy.NewService, policy.NewRepository)
var authProvider = wire.NewSet(auth.NewService, policyProvider)

func SetupAuthHandler(db *gorm.DB, rdb *redis.Client, mc *memcache.Client, verifier token.Verifier, config util.Config) auth.Handler {
	wire.Build(auth.NewHandler, authProvider)
	return nil
}

func SetupPolicyHandler(db *gorm.DB, rdb *redis.Client, mc *memcache.Client, config util.Config) policy.Handler {
	wire.Build(policy.NewHandler, policyProvider)
	return nil
}

func SetupSocketHandler(db *gorm.DB, rdb *redis.Client, mc *memcache.Client, verifier token.Verifier, config util.Config) socket.Handler {
	wire.Build(socket.NewHandler, authProvider)
	return nil
}
