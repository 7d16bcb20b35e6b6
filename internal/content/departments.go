package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	apperrors "github.com/darkiku/RfsGov/internal/errors"
)

type Department struct {
	ID            string     `json:"id"`
	NameRu        string     `json:"nameRu"`
	NameKk        string     `json:"nameKk"`
	NameEn        string     `json:"nameEn"`
	DescriptionRu string     `json:"descriptionRu"`
	DescriptionKk string     `json:"descriptionKk"`
	DescriptionEn string     `json:"descriptionEn"`
	DisplayOrder  int        `json:"displayOrder"`
	Employees     []Employee `json:"employees,omitempty"`
}

type Employee struct {
	ID           string `json:"id"`
	DepartmentID string `json:"departmentId"`
	FullName     string `json:"fullName"`
	Position     string `json:"position"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	DisplayOrder int    `json:"displayOrder"`
}

const departmentColumns = `id, name_ru, name_kk, name_en,
	description_ru, description_kk, description_en, display_order`

func scanDepartment(row pgx.Row) (*Department, error) {
	var d Department
	err := row.Scan(
		&d.ID, &d.NameRu, &d.NameKk, &d.NameEn,
		&d.DescriptionRu, &d.DescriptionKk, &d.DescriptionEn, &d.DisplayOrder,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan department: %w", err)
	}
	return &d, nil
}

// ListDepartments returns all departments with their staff attached.
func (r *Repository) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+departmentColumns+` FROM departments ORDER BY display_order, name_ru`)
	if err != nil {
		return nil, wrapQuery("departments", err)
	}
	defer rows.Close()

	var items []Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		items[i].Employees, err = r.listEmployees(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (r *Repository) GetDepartment(ctx context.Context, id string) (*Department, error) {
	d, err := scanDepartment(r.db.QueryRow(ctx,
		`SELECT `+departmentColumns+` FROM departments WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	d.Employees, err = r.listEmployees(ctx, id)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *Repository) listEmployees(ctx context.Context, departmentID string) ([]Employee, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, department_id, full_name, position, phone, email, display_order
		 FROM employees WHERE department_id = $1 ORDER BY display_order, full_name`, departmentID)
	if err != nil {
		return nil, wrapQuery("employees", err)
	}
	defer rows.Close()

	var staff []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.DepartmentID, &e.FullName, &e.Position, &e.Phone, &e.Email, &e.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		staff = append(staff, e)
	}
	return staff, rows.Err()
}

type DepartmentInput struct {
	NameRu        string `json:"nameRu"`
	NameKk        string `json:"nameKk"`
	NameEn        string `json:"nameEn"`
	DescriptionRu string `json:"descriptionRu"`
	DescriptionKk string `json:"descriptionKk"`
	DescriptionEn string `json:"descriptionEn"`
	DisplayOrder  int    `json:"displayOrder"`
}

func (r *Repository) CreateDepartment(ctx context.Context, input DepartmentInput) (*Department, error) {
	id := uuid.NewString()
	_, err := r.db.Exec(ctx,
		`INSERT INTO departments (id, name_ru, name_kk, name_en,
			description_ru, description_kk, description_en, display_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, input.NameRu, input.NameKk, input.NameEn,
		input.DescriptionRu, input.DescriptionKk, input.DescriptionEn, input.DisplayOrder)
	if err != nil {
		return nil, fmt.Errorf("insert department: %w", err)
	}
	return r.GetDepartment(ctx, id)
}

func (r *Repository) UpdateDepartment(ctx context.Context, id string, input DepartmentInput) (*Department, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE departments SET name_ru = $2, name_kk = $3, name_en = $4,
			description_ru = $5, description_kk = $6, description_en = $7, display_order = $8
		 WHERE id = $1`,
		id, input.NameRu, input.NameKk, input.NameEn,
		input.DescriptionRu, input.DescriptionKk, input.DescriptionEn, input.DisplayOrder)
	if err != nil {
		return nil, fmt.Errorf("update department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrNotFound
	}
	return r.GetDepartment(ctx, id)
}

// DeleteDepartment removes the department; employees go with it via the
// schema's ON DELETE CASCADE.
func (r *Repository) DeleteDepartment(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

type EmployeeInput struct {
	FullName     string `json:"fullName"`
	Position     string `json:"position"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	DisplayOrder int    `json:"displayOrder"`
}

func (r *Repository) CreateEmployee(ctx context.Context, departmentID string, input EmployeeInput) (*Employee, error) {
	if _, err := r.GetDepartment(ctx, departmentID); err != nil {
		return nil, err
	}

	e := Employee{
		ID:           uuid.NewString(),
		DepartmentID: departmentID,
		FullName:     input.FullName,
		Position:     input.Position,
		Phone:        input.Phone,
		Email:        input.Email,
		DisplayOrder: input.DisplayOrder,
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO employees (id, department_id, full_name, position, phone, email, display_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.DepartmentID, e.FullName, e.Position, e.Phone, e.Email, e.DisplayOrder)
	if err != nil {
		return nil, fmt.Errorf("insert employee: %w", err)
	}
	return &e, nil
}

func (r *Repository) UpdateEmployee(ctx context.Context, id string, input EmployeeInput) (*Employee, error) {
	var e Employee
	err := r.db.QueryRow(ctx,
		`UPDATE employees SET full_name = $2, position = $3, phone = $4, email = $5, display_order = $6
		 WHERE id = $1
		 RETURNING id, department_id, full_name, position, phone, email, display_order`,
		id, input.FullName, input.Position, input.Phone, input.Email, input.DisplayOrder).
		Scan(&e.ID, &e.DepartmentID, &e.FullName, &e.Position, &e.Phone, &e.Email, &e.DisplayOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("update employee: %w", err)
	}
	return &e, nil
}

func (r *Repository) DeleteEmployee(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (h *Handler) ListDepartments(c *fiber.Ctx) error {
	items, err := h.repo.ListDepartments(c.Context())
	if err != nil {
		return internalError(c, err)
	}
	if items == nil {
		items = []Department{}
	}
	return c.JSON(items)
}

func (h *Handler) GetDepartment(c *fiber.Ctx) error {
	item, err := h.repo.GetDepartment(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

func (h *Handler) CreateDepartment(c *fiber.Ctx) error {
	var input DepartmentInput
	if err := c.BodyParser(&input); err != nil {
		return badInput(c, "invalid input")
	}
	if input.NameRu == "" {
		return badInput(c, "nameRu is required")
	}

	item, err := h.repo.CreateDepartment(c.Context(), input)
	if err != nil {
		return internalError(c, err)
	}

	h.recordAudit(c, "CREATE_DEPARTMENT", "DEPARTMENT", item.ID, item.NameRu)
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *Handler) UpdateDepartment(c *fiber.Ctx) error {
	var input DepartmentInput
	if err := c.BodyParser(&input); err != nil {
		return badInput(c, "invalid input")
	}
	if input.NameRu == "" {
		return badInput(c, "nameRu is required")
	}

	item, err := h.repo.UpdateDepartment(c.Context(), c.Params("id"), input)
	if err != nil {
		return respondError(c, err)
	}

	h.recordAudit(c, "UPDATE_DEPARTMENT", "DEPARTMENT", item.ID, item.NameRu)
	return c.JSON(item)
}

func (h *Handler) DeleteDepartment(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.repo.DeleteDepartment(c.Context(), id); err != nil {
		return respondError(c, err)
	}

	h.recordAudit(c, "DELETE_DEPARTMENT", "DEPARTMENT", id, "")
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) CreateEmployee(c *fiber.Ctx) error {
	var input EmployeeInput
	if err := c.BodyParser(&input); err != nil {
		return badInput(c, "invalid input")
	}
	if input.FullName == "" {
		return badInput(c, "fullName is required")
	}

	item, err := h.repo.CreateEmployee(c.Context(), c.Params("id"), input)
	if err != nil {
		return respondError(c, err)
	}

	h.recordAudit(c, "CREATE_EMPLOYEE", "EMPLOYEE", item.ID, item.FullName)
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *Handler) UpdateEmployee(c *fiber.Ctx) error {
	var input EmployeeInput
	if err := c.BodyParser(&input); err != nil {
		return badInput(c, "invalid input")
	}
	if input.FullName == "" {
		return badInput(c, "fullName is required")
	}

	item, err := h.repo.UpdateEmployee(c.Context(), c.Params("employeeId"), input)
	if err != nil {
		return respondError(c, err)
	}

	h.recordAudit(c, "UPDATE_EMPLOYEE", "EMPLOYEE", item.ID, item.FullName)
	return c.JSON(item)
}

func (h *Handler) DeleteEmployee(c *fiber.Ctx) error {
	id := c.Params("employeeId")
	if err := h.repo.DeleteEmployee(c.Context(), id); err != nil {
		return respondError(c, err)
	}

	h.recordAudit(c, "DELETE_EMPLOYEE", "EMPLOYEE", id, "")
	return c.SendStatus(fiber.StatusNoContent)
}
