package auth

import "context"

type PermissionChecker interface {
	CanManageAssets(userPermissions []string) bool
	CanAllocateAssets(userPermissions []string) bool
	CanManageMaintenance(userPermissions []string) bool
	CanManageTickets(userPermissions []string) bool
	HasAnyPermission(userPermissions []string, requiredPermissions []string) bool
	IsAdmin(userPermissions []string) bool
}

type DefaultPermissionChecker struct{}

func NewPermissionChecker() PermissionChecker {
	return &DefaultPermissionChecker{}
}

func (c *DefaultPermissionChecker) HasPermission(ctx context.Context, userPermissions []string, permission string) (bool, error) {
	return c.HasAnyPermission(userPermissions, []string{permission}), nil
}

func (c *DefaultPermissionChecker) CanManageAssetsCtx(ctx context.Context, userPermissions []string) (bool, error) {
	return c.CanManageAssets(userPermissions), nil
}

func (c *DefaultPermissionChecker) CanAllocateAssetsCtx(ctx context.Context, userPermissions []string) (bool, error) {
	return c.CanAllocateAssets(userPermissions), nil
}

func (c *DefaultPermissionChecker) CanManageMaintenanceCtx(ctx context.Context, userPermissions []string) (bool, error) {
	return c.CanManageMaintenance(userPermissions), nil
}

func (c *DefaultPermissionChecker) CanManageTicketsCtx(ctx context.Context, userPermissions []string) (bool, error) {
	return c.CanManageTickets(userPermissions), nil
}

func (c *DefaultPermissionChecker) IsAdminCtx(ctx context.Context, userPermissions []string) (bool, error) {
	return c.IsAdmin(userPermissions), nil
}

func (c *DefaultPermissionChecker) CanManageAssets(userPermissions []string) bool {
	return c.HasAnyPermission(userPermissions, []string{PermManageAssets, PermAdmin})
}

func (c *DefaultPermissionChecker) CanAllocateAssets(userPermissions []string) bool {
	return c.HasAnyPermission(userPermissions, []string{PermAllocateAssets, PermManageAssets, PermAdmin})
}

func (c *DefaultPermissionChecker) CanManageMaintenance(userPermissions []string) bool {
	return c.HasAnyPermission(userPermissions, []string{PermManageMaintenance, PermAdmin})
}

func (c *DefaultPermissionChecker) CanManageTickets(userPermissions []string) bool {
	return c.HasAnyPermission(userPermissions, []string{PermManageTickets, PermAdmin})
}

func (c *DefaultPermissionChecker) HasAnyPermission(userPermissions []string, requiredPermissions []string) bool {
	for _, userPerm := range userPermissions {
		for _, requiredPerm := range requiredPermissions {
			if userPerm == requiredPerm {
				return true
			}
		}
	}
	return false
}

func (c *DefaultPermissionChecker) IsAdmin(userPermissions []string) bool {
	return c.HasAnyPermission(userPermissions, []string{PermAdmin})
}
