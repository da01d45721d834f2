package main

import (
	"context"
	"log"

	"gorm.io/gorm"

	"backoffice/internal/cache"
	"backoffice/internal/config"
	"backoffice/internal/db"
	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/internal/service"
)

var permissionNames = []string{
	"user.create", "user.update", "user.delete", "user.restore",
	"menu.create", "menu.update", "menu.delete",
	"role.assign", "permission.assign",
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Role{},
		&model.Permission{},
		&model.UserRole{},
		&model.UserPermission{},
		&model.Menu{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	permissions := seedPermissions(gormDB)
	superuser := seedRoles(gormDB, permissions)
	seedMenus(gormDB)
	seedSuperuser(ctx, gormDB, cacheClient, superuser)

	log.Println("Seed complete")
}

func seedPermissions(gormDB *gorm.DB) []model.Permission {
	permissions := make([]model.Permission, 0, len(permissionNames))
	for _, name := range permissionNames {
		var p model.Permission
		if err := gormDB.Where(model.Permission{Name: name}).FirstOrCreate(&p).Error; err != nil {
			log.Fatalf("Failed to seed permission %q: %v", name, err)
		}
		permissions = append(permissions, p)
	}
	return permissions
}

func seedRoles(gormDB *gorm.DB, permissions []model.Permission) *model.Role {
	var superuser model.Role
	if err := gormDB.Where(model.Role{Name: "superuser"}).FirstOrCreate(&superuser).Error; err != nil {
		log.Fatalf("Failed to seed superuser role: %v", err)
	}
	if err := gormDB.Model(&superuser).Association("Permissions").Replace(permissions); err != nil {
		log.Fatalf("Failed to bundle permissions: %v", err)
	}

	var operator model.Role
	if err := gormDB.Where(model.Role{Name: "operator"}).FirstOrCreate(&operator).Error; err != nil {
		log.Fatalf("Failed to seed operator role: %v", err)
	}
	return &superuser
}

func seedMenus(gormDB *gorm.DB) {
	var dashboard model.Menu
	if err := gormDB.Where(model.Menu{Name: "Dashboard"}).
		Attrs(model.Menu{RouteOrURL: "dashboard", Position: 0, Active: true, Routes: model.RouteList{"dashboard"}}).
		FirstOrCreate(&dashboard).Error; err != nil {
		log.Fatalf("Failed to seed dashboard menu: %v", err)
	}

	var admin model.Menu
	if err := gormDB.Where(model.Menu{Name: "Administration"}).
		Attrs(model.Menu{Position: 1, Active: true}).
		FirstOrCreate(&admin).Error; err != nil {
		log.Fatalf("Failed to seed administration menu: %v", err)
	}

	children := []model.Menu{
		{Name: "Users", ParentID: &admin.ID, RouteOrURL: "superuser.user.index", Position: 0, Active: true, Routes: model.RouteList{"superuser.user.index"}},
		{Name: "Menus", ParentID: &admin.ID, RouteOrURL: "superuser.menu.index", Position: 1, Active: true, Routes: model.RouteList{"superuser.menu.index"}},
	}
	for _, child := range children {
		var menu model.Menu
		if err := gormDB.Where(model.Menu{Name: child.Name}).Attrs(child).FirstOrCreate(&menu).Error; err != nil {
			log.Fatalf("Failed to seed menu %q: %v", child.Name, err)
		}
	}
}

func seedSuperuser(ctx context.Context, gormDB *gorm.DB, cacheClient *cache.Client, superuser *model.Role) {
	var count int64
	if err := gormDB.Unscoped().Model(&model.User{}).
		Where("username = ?", "superuser").Count(&count).Error; err != nil {
		log.Fatalf("Failed to check superuser account: %v", err)
	}
	if count > 0 {
		log.Println("Superuser account already present, skipping")
		return
	}

	userRepo := repository.NewUserRepository(gormDB)
	roleRepo := repository.NewRoleRepository(gormDB)
	permissionRepo := repository.NewPermissionRepository(gormDB)
	assocRepo := repository.NewAssociationRepository(gormDB)
	users := service.NewUserService(userRepo, roleRepo, permissionRepo, assocRepo, cacheClient)

	user, password, err := users.CreateUser(ctx, "Superuser", "superuser", "superuser@localhost")
	if err != nil {
		log.Fatalf("Failed to create superuser account: %v", err)
	}
	if _, _, err := users.ToggleRole(ctx, user.ID, superuser.ID); err != nil {
		log.Fatalf("Failed to grant superuser role: %v", err)
	}

	// Printed once; it is not retrievable afterwards.
	log.Printf("Superuser account created with default password %q", password)
}
